package table

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Render returns the table as a fixed-width text grid: a centered header
// row, a dash separator and one centered line per row, joined by newlines
// with no trailing newline.
func (t *Table) Render() string {
	cells := make([][]string, len(t.Rows))
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for r, row := range t.Rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			s := Cell(v)
			cells[r][i] = s
			if n := utf8.RuneCountInString(s); n > widths[i] {
				widths[i] = n
			}
		}
	}

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, renderLine(t.Columns, widths))

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}
	lines = append(lines, "|-"+strings.Join(dashes, "-|-")+"-|")

	for _, row := range cells {
		lines = append(lines, renderLine(row, widths))
	}
	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// WriteTo writes the rendered table followed by a newline.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render()+"\n")
	return int64(n), err
}

func renderLine(values []string, widths []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = center(v, widths[i])
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

// center pads s to width runes, putting the smaller half of the padding on
// the left.
func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
