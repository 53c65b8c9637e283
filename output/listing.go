package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/table"
)

// CollectionColumns are the columns shown when listing collections.
var CollectionColumns = []string{"id", "collection_name", "inserted_by", "inserted_at", "public"}

// FileColumns are the columns shown when listing files.
var FileColumns = []string{
	"id", "file_name", "file_category", "file_size", "processing_level",
	"public", "inserted_by", "inserted_at", "collection_id", "collection_name",
}

// CollectionsTable projects collection records to CollectionColumns with
// display dates and identities.
func CollectionsTable(records []lakehouse.Record) *table.Table {
	t := table.FromRecords(records).Project(CollectionColumns...)
	t.Apply("inserted_at", dateCell)
	t.Apply("inserted_by", identityCell)
	return t
}

// FilesTable projects file records to FileColumns with display dates,
// identities and sizes.
func FilesTable(records []lakehouse.Record) *table.Table {
	t := table.FromRecords(records).Project(FileColumns...)
	t.Apply("inserted_at", dateCell)
	t.Apply("inserted_by", identityCell)
	t.Apply("file_size", sizeCell)
	return t
}

// FormatSize renders a byte count as "X.XX KB" below 1024 KB and "X.XX MB"
// otherwise.
func FormatSize(bytes int64) string {
	kb := float64(bytes) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.2f KB", kb)
	}
	return fmt.Sprintf("%.2f MB", kb/1024)
}

// FormatDate renders Unix seconds as a UTC YYYY-MM-DD date.
func FormatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.DateOnly)
}

// IdentityEmail extracts the email from a "role:email" identity. Values
// without a role prefix are returned as is.
func IdentityEmail(identity string) string {
	parts := strings.Split(identity, ":")
	if len(parts) < 2 {
		return identity
	}
	return parts[1]
}

func dateCell(v any) any {
	if n, ok := lakehouse.ToInt(v); ok {
		return FormatDate(n)
	}
	return v
}

func identityCell(v any) any {
	if s, ok := v.(string); ok {
		return IdentityEmail(s)
	}
	return v
}

func sizeCell(v any) any {
	if n, ok := lakehouse.ToInt(v); ok {
		return FormatSize(n)
	}
	return v
}
