package dataset

import (
	"fmt"

	"github.com/lakehouselib/lakehouse/table"
	"github.com/xuri/excelize/v2"
)

// readExcelFile reads the first sheet of a workbook; its first row is the
// header.
func readExcelFile(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoTable
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}
	return fromTextRows(rows[0], rows[1:]), nil
}
