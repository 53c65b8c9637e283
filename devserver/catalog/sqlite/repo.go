// Package sqlite stores catalog documents in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver/catalog"
)

type Repo struct {
	db        *sql.DB
	tableName string
}

var _ catalog.Repo = (*Repo)(nil)

func NewRepo(db *sql.DB, tables catalog.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &Repo{db: db, tableName: quoteIdentifier(tables.Documents)}, nil
}

func (r *Repo) Insert(ctx context.Context, kind lakehouse.CatalogKind, doc lakehouse.Record) error {
	id, err := catalog.DocumentID(doc)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("insert: encode: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (kind, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO NOTHING`, r.tableName)

	res, err := r.db.ExecContext(ctx, query, string(kind), id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("insert %s %s: %w", kind, id, catalog.ErrConflict)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, kind lakehouse.CatalogKind, id string) (lakehouse.Record, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT body FROM %s WHERE kind = ? AND id = ?`, r.tableName)

	var body string
	if err := r.db.QueryRowContext(ctx, query, string(kind), id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lakehouse.Record{}, catalog.ErrNotFound
		}
		return lakehouse.Record{}, fmt.Errorf("get: %w", err)
	}

	var doc lakehouse.Record
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return lakehouse.Record{}, fmt.Errorf("get: decode: %w", err)
	}
	return doc, nil
}

func (r *Repo) Replace(ctx context.Context, kind lakehouse.CatalogKind, doc lakehouse.Record) error {
	id, err := catalog.DocumentID(doc)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("replace: encode: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET body = ?, updated_at = ? WHERE kind = ? AND id = ?`, r.tableName)

	res, err := r.db.ExecContext(ctx, query, string(body), time.Now().UTC().Format(time.RFC3339Nano), string(kind), id)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace: rows affected: %w", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *Repo) List(ctx context.Context, kind lakehouse.CatalogKind) ([]lakehouse.Record, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT body FROM %s WHERE kind = ? ORDER BY seq`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []lakehouse.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		var doc lakehouse.Record
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("list: decode: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}
	return docs, nil
}
