package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/table"
)

// Result is a formatted listing. Which field is populated depends on Mode:
// Records for ModeRaw, Table for ModeTable and Text for ModeJSON and ModeText.
type Result struct {
	Mode    Mode
	Records []lakehouse.Record
	Table   *table.Table
	Text    string
}

// Format presents records in the given mode.
func Format(records []lakehouse.Record, mode Mode) (*Result, error) {
	switch mode {
	case ModeRaw:
		return &Result{Mode: mode, Records: records}, nil
	case ModeTable:
		return &Result{Mode: mode, Table: tableOf(records)}, nil
	case ModeJSON:
		text, err := JSONText(records, true)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: mode, Text: text}, nil
	case ModeText:
		return &Result{Mode: mode, Text: tableOf(records).Render()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", lakehouse.ErrUnsupportedOutputFormat, mode)
	}
}

// FormatTable presents an already shaped table. Raw and JSON modes turn the
// rows back into records.
func FormatTable(t *table.Table, mode Mode) (*Result, error) {
	switch mode {
	case ModeTable:
		return &Result{Mode: mode, Table: t}, nil
	case ModeText:
		return &Result{Mode: mode, Text: t.Render()}, nil
	case ModeRaw, ModeJSON:
		return Format(t.Records(), mode)
	default:
		return nil, fmt.Errorf("%w: %s", lakehouse.ErrUnsupportedOutputFormat, mode)
	}
}

func tableOf(records []lakehouse.Record) *table.Table {
	t := table.FromRecords(records)
	t.MoveFirst("id")
	return t
}

// WriteTo writes the result as text. Raw records are written as compact
// JSON on one line.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var text string
	switch r.Mode {
	case ModeRaw:
		records := r.Records
		if records == nil {
			records = []lakehouse.Record{}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(records); err != nil {
			return 0, fmt.Errorf("encode records: %w", err)
		}
		text = strings.TrimSuffix(buf.String(), "\n")
	case ModeTable:
		if r.Table == nil {
			text = table.New().Render()
		} else {
			text = r.Table.Render()
		}
	case ModeJSON, ModeText:
		text = r.Text
	default:
		return 0, fmt.Errorf("%w: %s", lakehouse.ErrUnsupportedOutputFormat, r.Mode)
	}

	n, err := io.WriteString(w, text+"\n")
	return int64(n), err
}
