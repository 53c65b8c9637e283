// Package postgres stores catalog documents in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver/catalog"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

var _ catalog.Repo = (*Repo)(nil)

func NewRepo(pool *pgxpool.Pool, tables catalog.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Documents}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
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

	query := fmt.Sprintf(`
		INSERT INTO %s (kind, id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO NOTHING
	`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, string(kind), id, string(body))
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert %s %s: %w", kind, id, catalog.ErrConflict)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, kind lakehouse.CatalogKind, id string) (lakehouse.Record, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE kind = $1 AND id = $2`, r.tableName)

	var body string
	if err := r.pool.QueryRow(ctx, query, string(kind), id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	query := fmt.Sprintf(`
		UPDATE %s SET body = $1, updated_at = NOW()
		WHERE kind = $2 AND id = $3
	`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, string(body), string(kind), id)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *Repo) List(ctx context.Context, kind lakehouse.CatalogKind) ([]lakehouse.Record, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE kind = $1 ORDER BY seq`, r.tableName)

	rows, err := r.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

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
