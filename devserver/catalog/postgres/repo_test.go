package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver/catalog"
	"github.com/lakehouselib/lakehouse/devserver/catalog/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_InsertGetKeepsKeyOrder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	doc := lakehouse.NewRecord("id", "c-1", "zeta", 1, "alpha", "a", "public", true)
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogCollections, doc))

	got, err := repo.Get(ctx, lakehouse.CatalogCollections, "c-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "zeta", "alpha", "public"}, got.Keys())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"c-1","zeta":1,"alpha":"a","public":true}`, string(raw))
}

func TestRepo_Conflict(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "f")))
	assert.ErrorIs(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "f")), catalog.ErrConflict)
}

func TestRepo_ReplaceAndList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", id, "status", "pending")))
	}
	require.NoError(t, repo.Replace(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "b", "status", "ready")))

	docs, err := repo.List(ctx, lakehouse.CatalogFiles)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "b", docs[0].String("id"))
	assert.Equal(t, "ready", docs[0].String("status"))
	assert.Equal(t, "a", docs[1].String("id"))

	assert.ErrorIs(t, repo.Replace(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "zz")), catalog.ErrNotFound)
}

func TestRepo_GetNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), lakehouse.CatalogCollections, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestValidateSchema(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := catalog.Tables{Documents: "documents_" + getRandomString(t)}

	assert.Error(t, postgres.ValidateSchema(ctx, pool, tables), "table does not exist yet")

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	t.Cleanup(func() { _ = postgres.DropTables(ctx, pool, tables) })

	assert.NoError(t, postgres.Migrate(ctx, pool, tables), "migrate is idempotent")
	assert.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
}
