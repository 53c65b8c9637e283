package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lakehouselib/lakehouse/table"
)

func readDelimitedFile(path string, sep rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadDelimited(f, sep)
}

// ReadDelimited reads a delimited text table whose first record is the
// header.
func ReadDelimited(r io.Reader, sep rune) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		rows = append(rows, rec)
	}
	return fromTextRows(header, rows), nil
}

// WriteCSV writes t as comma separated text with a header row. Cells are
// formatted with table.Cell. Rows whose length differs from the column count
// fail with ErrMalformedInput.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(record) {
			return fmt.Errorf("%w: row %d has %d values for %d columns", ErrMalformedInput, i, len(row), len(record))
		}
		for j := range record {
			record[j] = table.Cell(row[j])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile stages t as a new CSV file in dir and returns its path.
// The caller owns the file and must remove it.
func WriteCSVFile(dir string, t *table.Table) (string, error) {
	f, err := os.CreateTemp(dir, "lakehouse-*.csv")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	path := filepath.Clean(f.Name())

	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return path, nil
}
