// Package catalog defines the persistence contract of the development
// server's catalog: collections and file records kept as ordered JSON
// documents, looked up by id and listed in insertion order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/lakehouselib/lakehouse"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a document id is already taken.
	ErrConflict = errors.New("document already exists")
	// ErrInvalidDocument is returned for documents without an "id" string.
	ErrInvalidDocument = errors.New("invalid document")
)

// Repo stores catalog documents. Implementations must be safe for
// concurrent use.
type Repo interface {
	// Insert stores a new document under its "id" field.
	Insert(ctx context.Context, kind lakehouse.CatalogKind, doc lakehouse.Record) error
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, kind lakehouse.CatalogKind, id string) (lakehouse.Record, error)
	// Replace overwrites an existing document, keeping its position in
	// listings.
	Replace(ctx context.Context, kind lakehouse.CatalogKind, doc lakehouse.Record) error
	// List returns every document of kind in insertion order.
	List(ctx context.Context, kind lakehouse.CatalogKind) ([]lakehouse.Record, error)
}

// Tables holds the configurable table name of the document store.
type Tables struct {
	Documents string `mapstructure:"documents"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Documents == "" {
		return errors.New("validate tables: documents table name cannot be empty")
	}
	if !IsValidTableName(t.Documents) {
		return fmt.Errorf("validate tables: invalid documents table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Documents)
	}
	return nil
}

// DocumentID returns the "id" of doc.
func DocumentID(doc lakehouse.Record) (string, error) {
	id := doc.String("id")
	if id == "" {
		return "", fmt.Errorf("%w: missing id", ErrInvalidDocument)
	}
	return id, nil
}

// Search lists the documents of kind that satisfy every filter.
func Search(ctx context.Context, repo Repo, kind lakehouse.CatalogKind, filters []lakehouse.Filter) ([]lakehouse.Record, error) {
	docs, err := repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]lakehouse.Record, 0, len(docs))
	for _, doc := range docs {
		if MatchAll(doc, filters) {
			out = append(out, doc)
		}
	}
	return out, nil
}
