package table

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/lakehouselib/lakehouse"
)

// Table is a list of rows sharing an ordered set of columns.
// Rows always hold exactly len(Columns) cells; missing values are nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns), Rows: [][]any{}}
}

// FromRecords builds a table whose columns are the union of the record keys
// in first-seen order.
func FromRecords(records []lakehouse.Record) *Table {
	t := New()
	seen := make(map[string]int)
	for i := range records {
		for _, key := range records[i].Keys() {
			if _, ok := seen[key]; !ok {
				seen[key] = len(t.Columns)
				t.Columns = append(t.Columns, key)
			}
		}
	}

	for i := range records {
		row := make([]any, len(t.Columns))
		for _, key := range records[i].Keys() {
			row[seen[key]], _ = records[i].Get(key)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column or -1.
func (t *Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// Column returns a copy of a column's values.
func (t *Table) Column(name string) ([]any, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// AppendRow adds a row. The value count must match the column count.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table: row has %d values, want %d", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, slices.Clone(values))
	return nil
}

// MoveFirst moves a column to the front, keeping the relative order of the
// others. It is a no-op when the column does not exist.
func (t *Table) MoveFirst(column string) {
	idx := t.Index(column)
	if idx <= 0 {
		return
	}
	t.Columns = moveToFront(t.Columns, idx)
	for i, row := range t.Rows {
		t.Rows[i] = moveToFront(row, idx)
	}
}

func moveToFront[T any](s []T, idx int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[idx])
	out = append(out, s[:idx]...)
	return append(out, s[idx+1:]...)
}

// Project returns a new table holding only the given columns, in the given
// order. Columns absent from t are filled with nil.
func (t *Table) Project(columns ...string) *Table {
	out := New(columns...)
	src := make([]int, len(columns))
	for i, c := range columns {
		src[i] = t.Index(c)
	}
	for _, row := range t.Rows {
		projected := make([]any, len(columns))
		for i, j := range src {
			if j >= 0 {
				projected[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// Apply replaces every value of a column with fn(value).
// It is a no-op when the column does not exist.
func (t *Table) Apply(column string, fn func(any) any) {
	idx := t.Index(column)
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		row[idx] = fn(row[idx])
	}
}

// Cell formats a value for text output. Nil is empty, strings are verbatim
// and composite values are written as compact JSON.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, lakehouse.Record:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// Records converts the rows back into records keyed by column name.
func (t *Table) Records() []lakehouse.Record {
	out := make([]lakehouse.Record, len(t.Rows))
	for i, row := range t.Rows {
		for j, c := range t.Columns {
			out[i].Set(c, row[j])
		}
	}
	return out
}
