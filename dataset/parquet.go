package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lakehouselib/lakehouse/table"
	"github.com/segmentio/parquet-go"
)

// readParquetFile reads every row of a Parquet file. Columns follow the
// order of the top-level schema fields.
func readParquetFile(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	fields := pqFile.Schema().Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name()
	}
	t := table.New(columns...)

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]any)
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", t.Len(), err)
		}
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		t.Rows = append(t.Rows, values)
	}
	return t, nil
}
