package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/lakehouselib/lakehouse/table"
)

var mdSeparatorCell = regexp.MustCompile(`^:?-+:?$`)

func readMarkdownFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadMarkdown(f)
}

// ReadMarkdown reads the first pipe table of a Markdown document. Lines
// outside the table are ignored and alignment rows are skipped.
func ReadMarkdown(r io.Reader) (*table.Table, error) {
	var (
		header []string
		rows   [][]string
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(line, "|") {
			if header != nil {
				break
			}
			continue
		}

		cells := splitPipeRow(line)
		if isSeparatorRow(cells) {
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if header == nil {
		return nil, ErrNoTable
	}
	return fromTextRows(header, rows), nil
}

func splitPipeRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !mdSeparatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}
