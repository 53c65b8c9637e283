// Package dataset turns downloaded catalog files into tables.
//
// Load picks a decoder from the file extension: delimited text (.csv, .tsv),
// JSON, Markdown pipe tables, the first table of an HTML page, Excel
// workbooks and Parquet files. Any other file is returned as a text
// document holding its name and content.
//
// WriteCSV is the inverse used to stage in-memory tables before upload.
package dataset
