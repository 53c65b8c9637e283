package client

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lakehouselib/lakehouse"
)

var validate = validator.New()

// CollectionOptions describes a collection to create. Bucket is the bucket
// name, or the namenode address for hdfs storage.
type CollectionOptions struct {
	StorageType lakehouse.StorageType `validate:"required,oneof=gcs s3 hdfs"`
	Name        string                `validate:"required"`
	Bucket      string
	Description string
	Public      bool
	Secret      bool
}

// UploadOptions describes a local file to upload into a collection.
// FileName is the name stored in the catalog; the local file's extension is
// appended when missing. Zero values default to an unstructured, raw,
// version 1 file.
type UploadOptions struct {
	LocalPath    string                 `validate:"required"`
	FileName     string                 `validate:"required"`
	CollectionID string                 `validate:"required"`
	Category     lakehouse.FileCategory `validate:"omitempty,oneof=structured unstructured"`
	Description  string
	Version      int `validate:"gte=0"`
	Public       bool
	Level        lakehouse.ProcessingLevel `validate:"omitempty,oneof=raw processed curated"`
}

func (o UploadOptions) withDefaults() UploadOptions {
	if o.Category == "" {
		o.Category = lakehouse.FileUnstructured
	}
	if o.Version == 0 {
		o.Version = 1
	}
	if o.Level == "" {
		o.Level = lakehouse.LevelRaw
	}
	return o
}

// TableUploadOptions holds the catalog metadata of an uploaded table.
type TableUploadOptions struct {
	CollectionID string
	Description  string
	Version      int
	Public       bool
	Level        lakehouse.ProcessingLevel
}

// ListOptions sorts a listing by one record field.
type ListOptions struct {
	SortKey string
	Desc    bool
}

// FileListOptions narrows a file listing by processing level. The zero
// value keeps every level.
type FileListOptions struct {
	ListOptions
	ExcludeRaw       bool
	ExcludeProcessed bool
	ExcludeCurated   bool
}

// Levels returns the processing levels kept by the options.
func (o FileListOptions) Levels() []lakehouse.ProcessingLevel {
	var levels []lakehouse.ProcessingLevel
	if !o.ExcludeRaw {
		levels = append(levels, lakehouse.LevelRaw)
	}
	if !o.ExcludeProcessed {
		levels = append(levels, lakehouse.LevelProcessed)
	}
	if !o.ExcludeCurated {
		levels = append(levels, lakehouse.LevelCurated)
	}
	return levels
}

// validateOptions checks opts against its struct tags and reports the first
// failing field.
func validateOptions(opts any) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", lakehouse.ErrInvalidInput, fe.Field())
		}
		return fmt.Errorf("%w: %s %v failed %q check", lakehouse.ErrInvalidInput, fe.Field(), fe.Value(), fe.Tag())
	}
	return fmt.Errorf("%w: %w", lakehouse.ErrInvalidInput, err)
}

// DownloadResult describes a downloaded file.
type DownloadResult struct {
	FileID string `json:"file_id"`
	Path   string `json:"path"`
	Size   int64  `json:"size_bytes"`
}
