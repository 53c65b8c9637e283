package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lakehouselib/lakehouse/table"
)

// Format is a dataset file format, named after its extension.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatExcel    Format = "xlsx"
	FormatParquet  Format = "parquet"
	// FormatText covers every other extension.
	FormatText Format = "text"
)

// FormatOf returns the format implied by a file name. Extensions match
// case-insensitively; .xls is read as an Excel workbook.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".json":
		return FormatJSON
	case ".md":
		return FormatMarkdown
	case ".html":
		return FormatHTML
	case ".xlsx", ".xls":
		return FormatExcel
	case ".parquet":
		return FormatParquet
	default:
		return FormatText
	}
}

// Dataset is a loaded file. Tabular formats populate Table; FormatText
// populates Content.
type Dataset struct {
	Name    string
	Format  Format
	Table   *table.Table
	Content string
}

// IsTabular reports whether the dataset holds a table.
func (d *Dataset) IsTabular() bool {
	return d.Table != nil
}

// Load reads the file at path and decodes it according to its extension.
func Load(path string) (*Dataset, error) {
	ds := &Dataset{Name: filepath.Base(path), Format: FormatOf(path)}

	var err error
	switch ds.Format {
	case FormatCSV:
		ds.Table, err = readDelimitedFile(path, ',')
	case FormatTSV:
		ds.Table, err = readDelimitedFile(path, '\t')
	case FormatJSON:
		ds.Table, err = readJSONFile(path)
	case FormatMarkdown:
		ds.Table, err = readMarkdownFile(path)
	case FormatHTML:
		ds.Table, err = readHTMLFile(path)
	case FormatExcel:
		ds.Table, err = readExcelFile(path)
	case FormatParquet:
		ds.Table, err = readParquetFile(path)
	default:
		var content []byte
		content, err = os.ReadFile(path)
		ds.Content = string(content)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s dataset %s: %w", ds.Format, ds.Name, err)
	}
	return ds, nil
}

// inferValue converts a text cell into the value it most likely holds:
// nil for empty cells, then int64, float64 and bool before falling back to
// the string itself.
func inferValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	return s
}

// fromTextRows builds a table from a header row and text rows. Short rows
// are padded with nil and long rows truncated.
func fromTextRows(header []string, rows [][]string) *table.Table {
	t := table.New(uniqueColumns(header)...)
	for _, row := range rows {
		values := make([]any, len(t.Columns))
		for i := range values {
			if i < len(row) {
				values[i] = inferValue(row[i])
			}
		}
		t.Rows = append(t.Rows, values)
	}
	return t
}

// uniqueColumns names blank headers "Unnamed: N" and suffixes repeated ones
// with ".N".
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		if n := seen[h]; n > 0 {
			name = h + "." + strconv.Itoa(n)
		}
		seen[h]++
		out[i] = name
	}
	return out
}
