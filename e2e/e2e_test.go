package e2e_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/client"
	"github.com/lakehouselib/lakehouse/output"
	"github.com/lakehouselib/lakehouse/table"
)

const peopleCSV = "name,age\nada,36\ngrace,45\n"

// TestE2E_Lifecycle_SQLite runs the client lifecycle against a SQLite catalog.
func TestE2E_Lifecycle_SQLite(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "sqlite",
		DBDSN:       filepath.Join(t.TempDir(), "catalog.db"),
		StoragePath: t.TempDir(),
	})
	defer cleanup()

	runLifecycleTests(t, baseURL)
}

// TestE2E_Lifecycle_Postgres runs the client lifecycle against PostgreSQL.
func TestE2E_Lifecycle_Postgres(t *testing.T) {
	dsn := getSharedPostgresDatabase(t)

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "postgres",
		DBDSN:       dsn,
		Table:       "e2e_lifecycle",
		StoragePath: t.TempDir(),
	})
	defer cleanup()

	runLifecycleTests(t, baseURL)
}

// runLifecycleTests contains the shared client round trip.
func runLifecycleTests(t *testing.T, baseURL string) {
	t.Helper()
	ctx := context.Background()

	c, err := client.New(baseURL)
	require.NoError(t, err)

	t.Run("requests without a session are rejected", func(t *testing.T) {
		_, err := c.ListCollections(ctx, client.ListOptions{}, output.ModeRaw)
		require.Error(t, err)
		assert.ErrorIs(t, err, &client.APIError{StatusCode: 401})
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := c.Authenticate(ctx, testEmail, "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, &client.APIError{StatusCode: 401})
	})

	session, err := c.Authenticate(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, "admin", session.UserRole)
	assert.Equal(t, "bearer", session.TokenType)

	var collectionID string
	t.Run("create collection", func(t *testing.T) {
		rec, err := c.CreateCollection(ctx, client.CollectionOptions{
			StorageType: lakehouse.StorageS3,
			Name:        "e2e",
			Bucket:      "e2e-bucket",
			Description: "round trip",
		})
		require.NoError(t, err)
		collectionID = rec.String("id")
		require.NotEmpty(t, collectionID)
		assert.Equal(t, "admin:"+testEmail, rec.String("inserted_by"))
	})
	require.NotEmpty(t, collectionID)

	t.Run("duplicate collection name conflicts", func(t *testing.T) {
		_, err := c.CreateCollection(ctx, client.CollectionOptions{
			StorageType: lakehouse.StorageS3,
			Name:        "e2e",
			Bucket:      "other",
		})
		assert.ErrorIs(t, err, &client.APIError{StatusCode: 409})
	})

	local := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(local, []byte(peopleCSV), 0o600))

	var fileID string
	t.Run("upload file", func(t *testing.T) {
		rec, err := c.UploadFile(ctx, client.UploadOptions{
			LocalPath:    local,
			FileName:     "people",
			CollectionID: collectionID,
			Category:     lakehouse.FileStructured,
		})
		require.NoError(t, err)
		fileID = rec.String("id")
		assert.Equal(t, "people.csv", rec.String("file_name"))
		assert.Equal(t, "ready", rec.String("status"))
		assert.Equal(t, "e2e", rec.String("collection_name"))
	})
	require.NotEmpty(t, fileID)

	t.Run("file record carries the uploaded size", func(t *testing.T) {
		rec, err := c.FileRecord(ctx, fileID)
		require.NoError(t, err)
		v, _ := rec.Get("file_size")
		size, ok := lakehouse.ToInt(v)
		require.True(t, ok)
		assert.Equal(t, int64(len(peopleCSV)), size)
	})

	t.Run("list files as table", func(t *testing.T) {
		res, err := c.ListFiles(ctx, client.FileListOptions{}, output.ModeTable)
		require.NoError(t, err)
		require.NotNil(t, res.Table)
		assert.Equal(t, output.FileColumns, res.Table.Columns)
		require.Equal(t, 1, res.Table.Len())
		assert.Equal(t, testEmail, res.Table.Rows[0][res.Table.Index("inserted_by")])
	})

	t.Run("list files excluding raw", func(t *testing.T) {
		res, err := c.ListFiles(ctx, client.FileListOptions{ExcludeRaw: true}, output.ModeRaw)
		require.NoError(t, err)
		assert.Empty(t, res.Records)
	})

	t.Run("search files", func(t *testing.T) {
		res, err := c.SearchFiles(ctx, output.ModeRaw, "file_name*PEOPLE", "file_size>10")
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, fileID, res.Records[0].String("id"))

		res, err = c.SearchFiles(ctx, output.ModeRaw, "file_size>=100000")
		require.NoError(t, err)
		assert.Empty(t, res.Records)
	})

	t.Run("search collections by keyword", func(t *testing.T) {
		res, err := c.SearchCollectionsByKeyword(ctx, "e2", output.ModeRaw)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, collectionID, res.Records[0].String("id"))
	})

	t.Run("download file", func(t *testing.T) {
		dir := t.TempDir()
		res, err := c.DownloadFile(ctx, fileID, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "people.csv"), res.Path)
		assert.Equal(t, int64(len(peopleCSV)), res.Size)

		got, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, peopleCSV, string(got))
	})

	t.Run("load dataset", func(t *testing.T) {
		ds, err := c.LoadDataset(ctx, fileID)
		require.NoError(t, err)
		require.True(t, ds.IsTabular())
		assert.Equal(t, []string{"name", "age"}, ds.Table.Columns)
		require.Equal(t, 2, ds.Table.Len())
		assert.Equal(t, "grace", table.Cell(ds.Table.Rows[1][0]))
		assert.Equal(t, "45", table.Cell(ds.Table.Rows[1][1]))
	})

	t.Run("upload table", func(t *testing.T) {
		tbl := table.New("city", "population")
		require.NoError(t, tbl.AppendRow("lyon", 522000))

		rec, err := c.UploadTable(ctx, tbl, "cities", client.TableUploadOptions{
			CollectionID: collectionID,
			Level:        lakehouse.LevelCurated,
		})
		require.NoError(t, err)
		assert.Equal(t, "cities.csv", rec.String("file_name"))
		assert.Equal(t, "curated", rec.String("processing_level"))

		ds, err := c.LoadDataset(ctx, rec.String("id"))
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "population"}, ds.Table.Columns)
	})

	t.Run("list buckets", func(t *testing.T) {
		res, err := c.ListBuckets(ctx, output.ModeRaw)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "e2e-bucket", res.Records[0].String("bucket_name"))
		assert.Equal(t, "s3", res.Records[0].String("storage_type"))
	})

	t.Run("unknown file is not found", func(t *testing.T) {
		_, err := c.DownloadFile(ctx, "no-such-file", t.TempDir())
		assert.ErrorIs(t, err, &client.APIError{StatusCode: 404})
	})
}

// TestE2E_Seed_SQLite seeds files through the CLI and reads them back
// through the API.
func TestE2E_Seed_SQLite(t *testing.T) {
	cfg := ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "sqlite",
		DBDSN:       filepath.Join(t.TempDir(), "catalog.db"),
		StoragePath: t.TempDir(),
	}
	configPath := createConfigFile(t, cfg)
	runCommand(t, configPath, "migrate")

	fixtures := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "people.csv"), []byte(peopleCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "notes.txt"), []byte("hello"), 0o600))
	runCommand(t, configPath, "seed", "--collection", "seeded", "--bucket", "seed-bucket", "--quiet", "-r", fixtures)

	baseURL, cleanup := startServer(t, cfg)
	defer cleanup()

	ctx := context.Background()
	c, err := client.New(baseURL)
	require.NoError(t, err)
	_, err = c.Authenticate(ctx, testEmail, testPassword)
	require.NoError(t, err)

	res, err := c.SearchFiles(ctx, output.ModeRaw, "collection_name=seeded")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	categories := map[string]string{}
	for i := range res.Records {
		categories[res.Records[i].String("file_name")] = res.Records[i].String("file_category")
	}
	assert.Equal(t, map[string]string{"people.csv": "structured", "notes.txt": "unstructured"}, categories)

	ds, err := c.LoadDataset(ctx, res.Records[0].String("id"))
	require.NoError(t, err)
	assert.NotNil(t, ds)
}
