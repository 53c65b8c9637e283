// Package table provides a small ordered-column tabular structure used to
// shape catalog records for display and upload.
//
// A Table is built from records, reshaped with column transforms and
// rendered as a fixed-width text grid:
//
//	t := table.FromRecords(records)
//	t.MoveFirst("id")
//	t.Apply("name", func(v any) any { return strings.ToUpper(table.Cell(v)) })
//	fmt.Println(t.Render())
//
// Rendered output looks like:
//
//	| id | name |
//	|----|------|
//	| 1  |  a   |
//	| 2  |  bb  |
package table
