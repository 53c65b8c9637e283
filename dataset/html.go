package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lakehouselib/lakehouse/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func readHTMLFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadHTML(f)
}

// ReadHTML reads the first <table> of an HTML document. Rows inside <thead>,
// or a leading row made only of <th> cells, form the header; without one the
// columns are numbered from 0.
func ReadHTML(r io.Reader) (*table.Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	tbl := findFirst(doc, atom.Table)
	if tbl == nil {
		return nil, ErrNoTable
	}

	var (
		header []string
		rows   [][]string
	)
	for _, tr := range tableRows(tbl) {
		cells, allHeaders := rowCells(tr)
		if header == nil && len(rows) == 0 && (allHeaders || inHead(tr)) {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	if header == nil {
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		header = make([]string, width)
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
	}
	return fromTextRows(header, rows), nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// tableRows returns the <tr> elements of tbl in document order, without
// descending into nested tables.
func tableRows(tbl *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(tbl)
	return rows
}

func rowCells(tr *html.Node) ([]string, bool) {
	var cells []string
	allHeaders := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
			cells = append(cells, textContent(c))
		case atom.Td:
			allHeaders = false
			cells = append(cells, textContent(c))
		}
	}
	return cells, allHeaders && len(cells) > 0
}

func inHead(tr *html.Node) bool {
	return tr.Parent != nil && tr.Parent.DataAtom == atom.Thead
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
