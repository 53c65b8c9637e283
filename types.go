package lakehouse

import (
	"fmt"
	"slices"
)

// StorageType is the storage system backing a collection.
type StorageType string

const (
	StorageGCS  StorageType = "gcs"
	StorageS3   StorageType = "s3"
	StorageHDFS StorageType = "hdfs"
)

func (s StorageType) IsValid() bool {
	switch s {
	case StorageGCS, StorageS3, StorageHDFS:
		return true
	default:
		return false
	}
}

func ParseStorageType(s string) (StorageType, error) {
	st := StorageType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: storage type %q (valid types: gcs, s3, hdfs)", ErrInvalidInput, s)
	}
	return st, nil
}

// FileCategory tells whether a file holds tabular data.
type FileCategory string

const (
	FileStructured   FileCategory = "structured"
	FileUnstructured FileCategory = "unstructured"
)

func (c FileCategory) IsValid() bool {
	return c == FileStructured || c == FileUnstructured
}

func ParseFileCategory(s string) (FileCategory, error) {
	c := FileCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: file category %q (valid categories: structured, unstructured)", ErrInvalidInput, s)
	}
	return c, nil
}

// ProcessingLevel is the lifecycle stage of a file.
type ProcessingLevel string

const (
	LevelRaw       ProcessingLevel = "raw"
	LevelProcessed ProcessingLevel = "processed"
	LevelCurated   ProcessingLevel = "curated"
)

// ProcessingLevels returns every processing level in lifecycle order.
func ProcessingLevels() []ProcessingLevel {
	return []ProcessingLevel{LevelRaw, LevelProcessed, LevelCurated}
}

func (l ProcessingLevel) IsValid() bool {
	return slices.Contains(ProcessingLevels(), l)
}

func ParseProcessingLevel(s string) (ProcessingLevel, error) {
	l := ProcessingLevel(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: processing level %q (valid levels: raw, processed, curated)", ErrInvalidInput, s)
	}
	return l, nil
}

// CatalogKind selects which catalog index an operation targets.
type CatalogKind string

const (
	CatalogFiles       CatalogKind = "files"
	CatalogCollections CatalogKind = "collections"
)

func (k CatalogKind) IsValid() bool {
	return k == CatalogFiles || k == CatalogCollections
}

// Operator is a comparison operator of the query language.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	// OpContains is the wildcard operator: substring match.
	OpContains Operator = "*"
)

// Operators returns all operators, two-character ones first.
func Operators() []Operator {
	return []Operator{OpNotEqual, OpGreaterEqual, OpLessEqual, OpEqual, OpGreater, OpLess, OpContains}
}

func (o Operator) IsValid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpContains:
		return true
	default:
		return false
	}
}

// Condition is one parsed query expression.
type Condition struct {
	Key      string
	Operator Operator
	Value    string
}

func (c Condition) String() string {
	return c.Key + string(c.Operator) + c.Value
}
