package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver/catalog"
	"github.com/lakehouselib/lakehouse/devserver/catalog/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_InsertGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	doc := lakehouse.NewRecord(
		"id", "c-1",
		"collection_name", "alpha",
		"public", false,
		"inserted_at", json.Number("1700000000"),
	)
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogCollections, doc))

	got, err := repo.Get(ctx, lakehouse.CatalogCollections, "c-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "collection_name", "public", "inserted_at"}, got.Keys())
	assert.Equal(t, "alpha", got.String("collection_name"))

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c-1","collection_name":"alpha","public":false,"inserted_at":1700000000}`, string(raw))
}

func TestRepo_InsertConflict(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	doc := lakehouse.NewRecord("id", "dup")
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, doc))

	err := repo.Insert(ctx, lakehouse.CatalogFiles, doc)
	assert.ErrorIs(t, err, catalog.ErrConflict)

	// same id under another kind is a different document
	assert.NoError(t, repo.Insert(ctx, lakehouse.CatalogCollections, doc))
}

func TestRepo_InsertWithoutID(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.Insert(context.Background(), lakehouse.CatalogFiles, lakehouse.NewRecord("file_name", "a.csv"))
	assert.ErrorIs(t, err, catalog.ErrInvalidDocument)
}

func TestRepo_GetNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), lakehouse.CatalogFiles, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepo_Replace(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "f-1", "status", "pending")))
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "f-2", "status", "pending")))

	require.NoError(t, repo.Replace(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "f-1", "status", "ready")))

	got, err := repo.Get(ctx, lakehouse.CatalogFiles, "f-1")
	require.NoError(t, err)
	assert.Equal(t, "ready", got.String("status"))

	docs, err := repo.List(ctx, lakehouse.CatalogFiles)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "f-1", docs[0].String("id"), "replace keeps listing position")

	err = repo.Replace(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "nope"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepo_ListInsertionOrder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, repo.Insert(ctx, lakehouse.CatalogCollections, lakehouse.NewRecord("id", id)))
	}
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "file")))

	docs, err := repo.List(ctx, lakehouse.CatalogCollections)
	require.NoError(t, err)

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].String("id")
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestRepo_ListEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	docs, err := repo.List(context.Background(), lakehouse.CatalogFiles)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestSearch(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "1", "file_name", "a.csv", "file_size", 10)))
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "2", "file_name", "b.parquet", "file_size", 2000)))
	require.NoError(t, repo.Insert(ctx, lakehouse.CatalogFiles, lakehouse.NewRecord("id", "3", "file_name", "c.csv", "file_size", 5000)))

	docs, err := catalog.Search(ctx, repo, lakehouse.CatalogFiles, []lakehouse.Filter{
		{PropertyName: "file_name", Operator: lakehouse.OpContains, PropertyValue: "CSV"},
		{PropertyName: "file_size", Operator: lakehouse.OpGreater, PropertyValue: "100"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "3", docs[0].String("id"))
}

func TestNewRepo_InvalidTables(t *testing.T) {
	_, err := sqlite.NewRepo(getTestDatabase(t), catalog.Tables{Documents: "Bad-Name"})
	assert.Error(t, err)
}
