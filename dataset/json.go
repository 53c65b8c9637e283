package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/table"
)

func readJSONFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadJSON(f)
}

// ReadJSON reads a JSON table. Two layouts are accepted: a list of records,
// and an object mapping each column to its values, either as a list or as
// an object keyed by row index.
func ReadJSON(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty JSON document", ErrMalformedInput)
	}

	switch data[0] {
	case '[':
		var records []lakehouse.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return table.FromRecords(records), nil
	case '{':
		var columns lakehouse.Record
		if err := json.Unmarshal(data, &columns); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return fromColumns(&columns)
	default:
		return nil, fmt.Errorf("%w: JSON table must be a list or an object", ErrMalformedInput)
	}
}

func fromColumns(columns *lakehouse.Record) (*table.Table, error) {
	names := columns.Keys()
	values := make([][]any, len(names))
	height := 0

	for i, name := range names {
		raw, _ := columns.Get(name)
		switch col := raw.(type) {
		case []any:
			values[i] = col
		case lakehouse.Record:
			values[i] = indexedValues(&col)
		default:
			return nil, fmt.Errorf("%w: column %q is not a list or an object", ErrMalformedInput, name)
		}
		height = max(height, len(values[i]))
	}

	t := table.New(names...)
	for r := range height {
		row := make([]any, len(names))
		for c := range names {
			if r < len(values[c]) {
				row[c] = values[c][r]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// indexedValues orders an index-keyed column by its keys, numerically when
// the keys are numbers.
func indexedValues(col *lakehouse.Record) []any {
	keys := col.Keys()
	slices.SortFunc(keys, func(a, b string) int {
		ai, aok := lakehouse.ToInt(a)
		bi, bok := lakehouse.ToInt(b)
		if aok && bok {
			return lakehouse.CompareValues(ai, bi)
		}
		return lakehouse.CompareValues(a, b)
	})

	out := make([]any, len(keys))
	for i, k := range keys {
		out[i], _ = col.Get(k)
	}
	return out
}
