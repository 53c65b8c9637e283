package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver/blobstore"
	"github.com/lakehouselib/lakehouse/devserver/catalog"
	"github.com/lakehouselib/lakehouse/devserver/users"
)

// File statuses. Uploads start pending and become ready once the client
// has sent every chunk.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// BlobStore holds uploaded file contents keyed by file record id.
type BlobStore interface {
	Append(ctx context.Context, id string, content io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadSeekCloser, int64, error)
	Size(ctx context.Context, id string) (int64, error)
}

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(email, password string) (users.User, error)
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	UserID       string `json:"user_id"`
	UserRole     string `json:"user_role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UploadSlot tells a client where to send the chunks of a new file.
type UploadSlot struct {
	UploadURL       string `json:"upload_url"`
	CatalogRecordID string `json:"catalog_record_id"`
	Method          string `json:"method"`
}

// DownloadSlot is a signed URL to a file's contents.
type DownloadSlot struct {
	DownloadURL string `json:"download_url"`
}

// Service implements the catalog and storage operations of the
// development backend.
type Service struct {
	repo   catalog.Repo
	blobs  BlobStore
	users  Authenticator
	tokens *Tokens
	signer *Signer
	logger *slog.Logger
	now    func() time.Time

	// serializes chunk appends and status changes
	mu sync.Mutex
}

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Repo   catalog.Repo
	Blobs  BlobStore
	Users  Authenticator
	Tokens *Tokens
	Signer *Signer
	Logger *slog.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil || cfg.Blobs == nil || cfg.Users == nil || cfg.Tokens == nil || cfg.Signer == nil {
		return nil, errors.New("new service: repo, blobs, users, tokens and signer are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   cfg.Repo,
		blobs:  cfg.Blobs,
		users:  cfg.Users,
		tokens: cfg.Tokens,
		signer: cfg.Signer,
		logger: logger,
		now:    time.Now,
	}, nil
}

// BlobPath is the URL path serving the contents of file id.
func BlobPath(id string) string {
	return "/blobs/" + id
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(_ context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.Authenticate(email, password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login %s: %w", email, ErrUnauthorized)
	}

	access, refresh, err := s.tokens.Issue(u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login %s: %w", email, err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return LoginResult{
		UserID:       u.ID,
		UserRole:     u.Role,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// VerifyToken resolves a bearer token to an identity.
func (s *Service) VerifyToken(token string) (Identity, error) {
	return s.tokens.Verify(token)
}

// VerifySignature checks a signed blob URL.
func (s *Service) VerifySignature(method, path string, query url.Values) error {
	return s.signer.Verify(method, path, query)
}

// CreateCollection validates req and stores a new collection document.
// Collection names are unique.
func (s *Service) CreateCollection(ctx context.Context, who Identity, req lakehouse.Record) (lakehouse.Record, error) {
	name := strings.TrimSpace(req.String("collection_name"))
	if name == "" {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w: collection_name is required", ErrInvalidInput)
	}

	storageType, err := lakehouse.ParseStorageType(req.String("storage_type"))
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w: %w", ErrInvalidInput, err)
	}

	locationKey := "bucket_name"
	if storageType == lakehouse.StorageHDFS {
		locationKey = "namenode_address"
	}
	location := req.String(locationKey)
	if location == "" {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w: %s is required for %s storage", ErrInvalidInput, locationKey, storageType)
	}

	existing, err := catalog.Search(ctx, s.repo, lakehouse.CatalogCollections, []lakehouse.Filter{
		{PropertyName: "collection_name", Operator: lakehouse.OpEqual, PropertyValue: name},
	})
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w", err)
	}
	if len(existing) > 0 {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w: collection %q already exists", ErrConflict, name)
	}

	doc := lakehouse.NewRecord(
		"id", uuid.New().String(),
		"collection_name", name,
		"collection_description", optional(req, "collection_description"),
		"storage_type", string(storageType),
		locationKey, location,
		"public", flag(req, "public"),
		"secret", flag(req, "secret"),
		"inserted_by", who.InsertedBy(),
		"inserted_at", s.now().Unix(),
	)

	if err := s.repo.Insert(ctx, lakehouse.CatalogCollections, doc); err != nil {
		return lakehouse.Record{}, fmt.Errorf("create collection: %w", err)
	}

	s.logger.Info("collection created", "id", doc.String("id"), "collection_name", name, "inserted_by", who.InsertedBy())
	return doc, nil
}

// List returns every document of kind in insertion order.
func (s *Service) List(ctx context.Context, kind lakehouse.CatalogKind) ([]lakehouse.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("list: %w: unknown catalog %q", ErrInvalidInput, kind)
	}
	docs, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return docs, nil
}

// Search returns the documents of kind matching every filter.
func (s *Service) Search(ctx context.Context, kind lakehouse.CatalogKind, filters []lakehouse.Filter) ([]lakehouse.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("search: %w: unknown catalog %q", ErrInvalidInput, kind)
	}
	payload, err := lakehouse.NewFilterPayload(filters...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	docs, err := catalog.Search(ctx, s.repo, kind, payload.Filters)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", kind, err)
	}
	return docs, nil
}

// FileRecord returns the catalog record of a file.
func (s *Service) FileRecord(ctx context.Context, id string) (lakehouse.Record, error) {
	return s.get(ctx, lakehouse.CatalogFiles, id)
}

func (s *Service) get(ctx context.Context, kind lakehouse.CatalogKind, id string) (lakehouse.Record, error) {
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return lakehouse.Record{}, fmt.Errorf("%s %s: %w", strings.TrimSuffix(string(kind), "s"), id, ErrNotFound)
		}
		return lakehouse.Record{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return doc, nil
}

// RequestUpload creates a pending file record in a collection and returns
// the signed URL its chunks must be sent to.
func (s *Service) RequestUpload(ctx context.Context, who Identity, req lakehouse.Record) (UploadSlot, error) {
	collectionID := req.String("collection_catalog_id")
	if collectionID == "" {
		return UploadSlot{}, fmt.Errorf("request upload: %w: collection_catalog_id is required", ErrInvalidInput)
	}
	fileName := strings.TrimSpace(req.String("file_name"))
	if fileName == "" {
		return UploadSlot{}, fmt.Errorf("request upload: %w: file_name is required", ErrInvalidInput)
	}

	category := lakehouse.FileUnstructured
	if v := req.String("file_category"); v != "" {
		c, err := lakehouse.ParseFileCategory(v)
		if err != nil {
			return UploadSlot{}, fmt.Errorf("request upload: %w: %w", ErrInvalidInput, err)
		}
		category = c
	}

	level := lakehouse.LevelRaw
	if v := req.String("processing_level"); v != "" {
		l, err := lakehouse.ParseProcessingLevel(v)
		if err != nil {
			return UploadSlot{}, fmt.Errorf("request upload: %w: %w", ErrInvalidInput, err)
		}
		level = l
	}

	version := int64(1)
	if v, ok := req.Get("file_version"); ok && v != nil {
		n, ok := lakehouse.ToInt(v)
		if !ok || n < 1 {
			return UploadSlot{}, fmt.Errorf("request upload: %w: file_version must be a positive integer", ErrInvalidInput)
		}
		version = n
	}

	collection, err := s.get(ctx, lakehouse.CatalogCollections, collectionID)
	if err != nil {
		return UploadSlot{}, fmt.Errorf("request upload: %w", err)
	}

	id := uuid.New().String()
	doc := lakehouse.NewRecord(
		"id", id,
		"file_name", fileName,
		"file_category", string(category),
		"file_size", int64(0),
		"file_version", version,
		"file_description", optional(req, "file_description"),
		"processing_level", string(level),
		"public", flag(req, "public"),
		"status", StatusPending,
		"collection_id", collectionID,
		"collection_name", collection.String("collection_name"),
		"storage_type", collection.String("storage_type"),
		"inserted_by", who.InsertedBy(),
		"inserted_at", s.now().Unix(),
	)

	if err := s.repo.Insert(ctx, lakehouse.CatalogFiles, doc); err != nil {
		return UploadSlot{}, fmt.Errorf("request upload: %w", err)
	}

	s.logger.Info("upload requested", "id", id, "file_name", fileName, "collection_id", collectionID)
	return UploadSlot{
		UploadURL:       s.signer.Presign(http.MethodPut, BlobPath(id)),
		CatalogRecordID: id,
		Method:          http.MethodPut,
	}, nil
}

// AppendChunk appends the next chunk of a pending upload.
func (s *Service) AppendChunk(ctx context.Context, id string, chunk io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.FileRecord(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("append chunk: %w", err)
	}
	if status := doc.String("status"); status != StatusPending {
		return 0, fmt.Errorf("append chunk: %w: file %s is %s", ErrConflict, id, status)
	}

	n, err := s.blobs.Append(ctx, id, chunk)
	if err != nil {
		return n, fmt.Errorf("append chunk %s: %w", id, err)
	}

	s.logger.Debug("chunk stored", "id", id, "bytes", n)
	return n, nil
}

// SetFileStatus changes the status of a file. Marking a file ready records
// the size of its stored contents.
func (s *Service) SetFileStatus(ctx context.Context, id, status string) (lakehouse.Record, error) {
	switch status {
	case StatusPending, StatusReady, StatusFailed:
	default:
		return lakehouse.Record{}, fmt.Errorf("set file status: %w: unknown status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.FileRecord(ctx, id)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("set file status: %w", err)
	}

	if status == StatusReady {
		size, err := s.readySize(ctx, id)
		if err != nil {
			return lakehouse.Record{}, fmt.Errorf("set file status: %w", err)
		}
		doc.Set("file_size", size)
	}
	doc.Set("status", status)

	if err := s.repo.Replace(ctx, lakehouse.CatalogFiles, doc); err != nil {
		return lakehouse.Record{}, fmt.Errorf("set file status: %w", err)
	}

	s.logger.Info("file status changed", "id", id, "status", status)
	return doc, nil
}

// readySize returns the stored size of id, creating an empty blob for
// uploads that sent no chunks.
func (s *Service) readySize(ctx context.Context, id string) (int64, error) {
	size, err := s.blobs.Size(ctx, id)
	if errors.Is(err, blobstore.ErrNotFound) {
		if _, err := s.blobs.Append(ctx, id, strings.NewReader("")); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return size, err
}

// RequestDownload returns a signed URL to the contents of a ready file.
func (s *Service) RequestDownload(ctx context.Context, id string) (DownloadSlot, error) {
	doc, err := s.FileRecord(ctx, id)
	if err != nil {
		return DownloadSlot{}, fmt.Errorf("request download: %w", err)
	}
	if status := doc.String("status"); status != StatusReady {
		return DownloadSlot{}, fmt.Errorf("request download: %w: file %s is %s", ErrConflict, id, status)
	}
	return DownloadSlot{DownloadURL: s.signer.Presign(http.MethodGet, BlobPath(id))}, nil
}

// OpenBlob opens the stored contents of a file.
func (s *Service) OpenBlob(ctx context.Context, id string) (io.ReadSeekCloser, int64, error) {
	r, size, err := s.blobs.Open(ctx, id)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, 0, fmt.Errorf("blob %s: %w", id, ErrNotFound)
		}
		return nil, 0, fmt.Errorf("open blob %s: %w", id, err)
	}
	return r, size, nil
}

// ListBuckets derives the storage buckets from the collections, in order of
// first use. Hdfs collections report their namenode address as the bucket.
func (s *Service) ListBuckets(ctx context.Context) ([]lakehouse.Record, error) {
	collections, err := s.repo.List(ctx, lakehouse.CatalogCollections)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	type bucketKey struct{ storageType, name string }
	index := make(map[bucketKey]int)
	buckets := []lakehouse.Record{}

	for _, c := range collections {
		name := c.String("bucket_name")
		if name == "" {
			name = c.String("namenode_address")
		}
		key := bucketKey{storageType: c.String("storage_type"), name: name}

		if i, ok := index[key]; ok {
			n, _ := buckets[i].Get("collections")
			buckets[i].Set("collections", n.(int)+1)
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, lakehouse.NewRecord(
			"bucket_name", name,
			"storage_type", key.storageType,
			"collections", 1,
		))
	}
	return buckets, nil
}

// optional returns the trimmed string value of key, or nil when empty.
func optional(r lakehouse.Record, key string) any {
	if v := strings.TrimSpace(r.String(key)); v != "" {
		return v
	}
	return nil
}

func flag(r lakehouse.Record, key string) bool {
	v, _ := r.Get(key)
	b, _ := v.(bool)
	return b
}
