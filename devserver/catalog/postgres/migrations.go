package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakehouselib/lakehouse/devserver/catalog"
)

// Migrate creates the catalog tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables catalog.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := createDocumentsTable(ctx, pool, tables.Documents); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Documents, err)
	}
	return nil
}

// DropTables removes the catalog tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables catalog.Tables) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tables.Documents}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Documents, err)
	}
	return nil
}

func createDocumentsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexKindSeq := pgx.Identifier{fmt.Sprintf("idx_%s_kind_seq", tableName)}.Sanitize()

	// body stays TEXT: jsonb would reorder keys
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (kind, id)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (kind, seq);
	`,
		quotedTable,
		indexKindSeq, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}
