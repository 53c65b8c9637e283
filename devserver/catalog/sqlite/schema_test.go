package sqlite_test

import (
	"context"
	"testing"

	"github.com/lakehouselib/lakehouse/devserver/catalog"
	"github.com/lakehouselib/lakehouse/devserver/catalog/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := getTestDatabase(t)
	ctx := context.Background()
	tables := catalog.Tables{Documents: "documents_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	assert.NoError(t, sqlite.Migrate(ctx, db, tables))
	assert.NoError(t, sqlite.ValidateSchema(ctx, db, tables))
}

func TestValidateSchema_MissingTable(t *testing.T) {
	db := getTestDatabase(t)

	err := sqlite.ValidateSchema(context.Background(), db, catalog.Tables{Documents: "not_there"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_WrongColumns(t *testing.T) {
	db := getTestDatabase(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE "legacy_docs" (id TEXT NOT NULL, body BLOB)`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, catalog.Tables{Documents: "legacy_docs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "body: expected text, got blob")
}

func TestDropTables(t *testing.T) {
	db := getTestDatabase(t)
	ctx := context.Background()
	tables := catalog.Tables{Documents: "documents_" + getRandomString(t)}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	require.NoError(t, sqlite.DropTables(ctx, db, tables))
	assert.Error(t, sqlite.ValidateSchema(ctx, db, tables))
}
