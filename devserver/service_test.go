package devserver_test

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver"
	"github.com/lakehouselib/lakehouse/devserver/blobstore"
	"github.com/lakehouselib/lakehouse/devserver/database"
	"github.com/lakehouselib/lakehouse/devserver/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = devserver.Identity{UserID: "u-1", Email: "user1@gmail.com", Role: "admin"}

func newTestService(t *testing.T) *devserver.Service {
	t.Helper()
	ctx := context.Background()

	repo, cleanup, err := database.Connect(ctx, database.Config{Type: "sqlite", DSN: ":memory:", Table: "catalog_documents"})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	root, err := os.OpenRoot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	store, err := users.NewStore(users.Config{Inline: []users.User{testUser}})
	require.NoError(t, err)

	svc, err := devserver.NewService(devserver.ServiceConfig{
		Repo:   repo,
		Blobs:  blobstore.New(root),
		Users:  store,
		Tokens: devserver.NewTokens("jwt-secret", time.Hour),
		Signer: devserver.NewSigner(testAccessKey, testSecretKey, "http://localhost:8000", time.Minute),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	devserver.SetServiceClock(svc, func() time.Time { return time.Unix(1_700_000_000, 0) })
	return svc
}

func request(t *testing.T, body string) lakehouse.Record {
	t.Helper()
	var r lakehouse.Record
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r
}

func createCollection(t *testing.T, svc *devserver.Service, name string) lakehouse.Record {
	t.Helper()
	doc, err := svc.CreateCollection(context.Background(), admin,
		request(t, `{"storage_type":"s3","collection_name":"`+name+`","public":true,"secret":false,"bucket_name":"lake-bucket"}`))
	require.NoError(t, err)
	return doc
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := devserver.NewService(devserver.ServiceConfig{})
	assert.Error(t, err)
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "user1@gmail.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.UserID)
	assert.Equal(t, "admin", res.UserRole)
	assert.Equal(t, "bearer", res.TokenType)

	id, err := svc.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin, id)

	_, err = svc.Login(ctx, "user1@gmail.com", "wrong")
	assert.ErrorIs(t, err, devserver.ErrUnauthorized)
}

func TestService_CreateCollection(t *testing.T) {
	svc := newTestService(t)

	doc := createCollection(t, svc, "alpha")
	assert.Equal(t, []string{
		"id", "collection_name", "collection_description", "storage_type", "bucket_name",
		"public", "secret", "inserted_by", "inserted_at",
	}, doc.Keys())
	assert.Equal(t, "admin:user1@gmail.com", doc.String("inserted_by"))
	assert.Equal(t, "1700000000", doc.String("inserted_at"))

	hdfs, err := svc.CreateCollection(context.Background(), admin,
		request(t, `{"storage_type":"hdfs","collection_name":"beta","namenode_address":"namenode:9000"}`))
	require.NoError(t, err)
	v, ok := hdfs.Get("namenode_address")
	assert.True(t, ok)
	assert.Equal(t, "namenode:9000", v)
	_, ok = hdfs.Get("bucket_name")
	assert.False(t, ok)
}

func TestService_CreateCollectionErrors(t *testing.T) {
	svc := newTestService(t)
	createCollection(t, svc, "taken")

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "missing name", body: `{"storage_type":"s3","bucket_name":"b"}`, wantErr: devserver.ErrInvalidInput},
		{name: "bad storage", body: `{"storage_type":"azure","collection_name":"x","bucket_name":"b"}`, wantErr: devserver.ErrInvalidInput},
		{name: "missing bucket", body: `{"storage_type":"gcs","collection_name":"x"}`, wantErr: devserver.ErrInvalidInput},
		{name: "hdfs needs namenode", body: `{"storage_type":"hdfs","collection_name":"x","bucket_name":"b"}`, wantErr: devserver.ErrInvalidInput},
		{name: "duplicate name", body: `{"storage_type":"s3","collection_name":"taken","bucket_name":"b"}`, wantErr: devserver.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCollection(context.Background(), admin, request(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_UploadLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	coll := createCollection(t, svc, "alpha")

	slot, err := svc.RequestUpload(ctx, admin, request(t, `{
		"collection_catalog_id": "`+coll.String("id")+`",
		"file_name": "data.csv",
		"file_category": "structured",
		"file_version": 2,
		"file_size": 11,
		"public": false,
		"processing_level": "processed",
		"file_description": null
	}`))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, slot.Method)

	u, err := url.Parse(slot.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, devserver.BlobPath(slot.CatalogRecordID), u.Path)
	assert.NoError(t, svc.VerifySignature(http.MethodPut, u.Path, u.Query()))

	pending, err := svc.FileRecord(ctx, slot.CatalogRecordID)
	require.NoError(t, err)
	assert.Equal(t, devserver.StatusPending, pending.String("status"))
	assert.Equal(t, "alpha", pending.String("collection_name"))
	assert.Equal(t, "2", pending.String("file_version"))

	_, err = svc.RequestDownload(ctx, slot.CatalogRecordID)
	assert.ErrorIs(t, err, devserver.ErrConflict, "pending files cannot be downloaded")

	for _, chunk := range []string{"hello ", "world"} {
		_, err := svc.AppendChunk(ctx, slot.CatalogRecordID, strings.NewReader(chunk))
		require.NoError(t, err)
	}

	ready, err := svc.SetFileStatus(ctx, slot.CatalogRecordID, devserver.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, devserver.StatusReady, ready.String("status"))
	assert.Equal(t, "11", ready.String("file_size"))

	_, err = svc.AppendChunk(ctx, slot.CatalogRecordID, strings.NewReader("late"))
	assert.ErrorIs(t, err, devserver.ErrConflict)

	dl, err := svc.RequestDownload(ctx, slot.CatalogRecordID)
	require.NoError(t, err)
	du, err := url.Parse(dl.DownloadURL)
	require.NoError(t, err)
	assert.NoError(t, svc.VerifySignature(http.MethodGet, du.Path, du.Query()))

	r, size, err := svc.OpenBlob(ctx, slot.CatalogRecordID)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.Equal(t, int64(11), size)
}

func TestService_ReadyWithoutChunks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	coll := createCollection(t, svc, "alpha")

	slot, err := svc.RequestUpload(ctx, admin, request(t, `{"collection_catalog_id":"`+coll.String("id")+`","file_name":"empty.txt"}`))
	require.NoError(t, err)

	doc, err := svc.SetFileStatus(ctx, slot.CatalogRecordID, devserver.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, "0", doc.String("file_size"))
	assert.Equal(t, string(lakehouse.FileUnstructured), doc.String("file_category"))
	assert.Equal(t, string(lakehouse.LevelRaw), doc.String("processing_level"))
}

func TestService_RequestUploadErrors(t *testing.T) {
	svc := newTestService(t)
	coll := createCollection(t, svc, "alpha")
	id := coll.String("id")

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "no collection", body: `{"file_name":"a.csv"}`, wantErr: devserver.ErrInvalidInput},
		{name: "no file name", body: `{"collection_catalog_id":"` + id + `"}`, wantErr: devserver.ErrInvalidInput},
		{name: "bad category", body: `{"collection_catalog_id":"` + id + `","file_name":"a","file_category":"tabular"}`, wantErr: devserver.ErrInvalidInput},
		{name: "bad level", body: `{"collection_catalog_id":"` + id + `","file_name":"a","processing_level":"gold"}`, wantErr: devserver.ErrInvalidInput},
		{name: "bad version", body: `{"collection_catalog_id":"` + id + `","file_name":"a","file_version":0}`, wantErr: devserver.ErrInvalidInput},
		{name: "unknown collection", body: `{"collection_catalog_id":"nope","file_name":"a"}`, wantErr: devserver.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RequestUpload(context.Background(), admin, request(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_SetFileStatusErrors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetFileStatus(context.Background(), "missing", devserver.StatusReady)
	assert.ErrorIs(t, err, devserver.ErrNotFound)

	_, err = svc.SetFileStatus(context.Background(), "missing", "archived")
	assert.ErrorIs(t, err, devserver.ErrInvalidInput)
}

func TestService_OpenBlobNotFound(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.OpenBlob(context.Background(), "missing")
	assert.ErrorIs(t, err, devserver.ErrNotFound)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestService_Search(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	createCollection(t, svc, "alpha-lake")
	createCollection(t, svc, "beta")

	docs, err := svc.Search(ctx, lakehouse.CatalogCollections, []lakehouse.Filter{
		lakehouse.KeywordFilter("collection_name", "LAKE"),
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alpha-lake", docs[0].String("collection_name"))

	all, err := svc.Search(ctx, lakehouse.CatalogCollections, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Search(ctx, lakehouse.CatalogCollections, []lakehouse.Filter{{PropertyName: "x", Operator: "==", PropertyValue: "1"}})
	assert.ErrorIs(t, err, lakehouse.ErrInvalidFilterFormat)

	_, err = svc.Search(ctx, "buckets", nil)
	assert.ErrorIs(t, err, devserver.ErrInvalidInput)
}

func TestService_ListBuckets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createCollection(t, svc, "a")
	createCollection(t, svc, "b")
	_, err := svc.CreateCollection(ctx, admin, request(t, `{"storage_type":"hdfs","collection_name":"c","namenode_address":"nn:9000"}`))
	require.NoError(t, err)

	buckets, err := svc.ListBuckets(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	raw, err := json.Marshal(buckets)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"bucket_name":"lake-bucket","storage_type":"s3","collections":2},
		{"bucket_name":"nn:9000","storage_type":"hdfs","collections":1}
	]`, string(raw))
}
