package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver"
)

// MaxChunkBytes bounds the body of a single upload chunk.
const MaxChunkBytes = 64 << 20

type Service interface {
	Login(ctx context.Context, email, password string) (devserver.LoginResult, error)
	VerifyToken(token string) (devserver.Identity, error)
	VerifySignature(method, path string, query url.Values) error

	CreateCollection(ctx context.Context, who devserver.Identity, req lakehouse.Record) (lakehouse.Record, error)
	List(ctx context.Context, kind lakehouse.CatalogKind) ([]lakehouse.Record, error)
	Search(ctx context.Context, kind lakehouse.CatalogKind, filters []lakehouse.Filter) ([]lakehouse.Record, error)
	FileRecord(ctx context.Context, id string) (lakehouse.Record, error)
	SetFileStatus(ctx context.Context, id, status string) (lakehouse.Record, error)
	ListBuckets(ctx context.Context) ([]lakehouse.Record, error)

	RequestUpload(ctx context.Context, who devserver.Identity, req lakehouse.Record) (devserver.UploadSlot, error)
	RequestDownload(ctx context.Context, id string) (devserver.DownloadSlot, error)
	AppendChunk(ctx context.Context, id string, chunk io.Reader) (int64, error)
	OpenBlob(ctx context.Context, id string) (io.ReadSeekCloser, int64, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// Handler serves the lakehouse REST surface.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with every route configured. Login is
// open, blob routes need a signed URL and everything else a bearer token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(SignatureMiddleware(h.service))
		r.Get("/blobs/{id}", h.handleBlobGet)
		r.Put("/blobs/{id}", h.handleBlobPut)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.service))

		r.Get("/catalog/{kind}/all", h.handleList)
		r.Post("/catalog/{kind}/search", h.handleSearch)
		r.Get("/catalog/file/id/{id}", h.handleFileRecord)
		r.Put("/catalog/set-file-status/{id}", h.handleSetFileStatus)

		r.Post("/storage/collections/create", h.handleCreateCollection)
		r.Get("/storage/bucket-list", h.handleBucketList)
		r.Post("/storage/files/upload-request", h.handleUploadRequest)
		r.Post("/storage/files/download-request", h.handleDownloadRequest)
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, devserver.ErrUnauthorized) {
			WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, res)
}

type recordsResponse struct {
	Records []lakehouse.Record `json:"records"`
}

func catalogKind(r *http.Request) (lakehouse.CatalogKind, bool) {
	kind := lakehouse.CatalogKind(chi.URLParam(r, "kind"))
	return kind, kind.IsValid()
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := catalogKind(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Not Found")
		return
	}

	docs, err := h.service.List(r.Context(), kind)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, recordsResponse{Records: docs})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	kind, ok := catalogKind(r)
	if !ok {
		WriteError(w, http.StatusNotFound, "Not Found")
		return
	}

	var payload lakehouse.FilterPayload
	if err := decodeBody(r, &payload); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	docs, err := h.service.Search(r.Context(), kind, payload.Filters)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, recordsResponse{Records: docs})
}

func (h *Handler) handleFileRecord(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.FileRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, doc)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetFileStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	doc, err := h.service.SetFileStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req lakehouse.Record
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	who, _ := devserver.IdentityFromContext(r.Context())
	doc, err := h.service.CreateCollection(r.Context(), who, req)
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, doc)
}

type bucketsResponse struct {
	BucketList []lakehouse.Record `json:"bucket_list"`
}

func (h *Handler) handleBucketList(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.ListBuckets(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, bucketsResponse{BucketList: buckets})
}

func (h *Handler) handleUploadRequest(w http.ResponseWriter, r *http.Request) {
	var req lakehouse.Record
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	who, _ := devserver.IdentityFromContext(r.Context())
	slot, err := h.service.RequestUpload(r.Context(), who, req)
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, slot)
}

type downloadRequest struct {
	CatalogFileID string `json:"catalog_file_id"`
}

func (h *Handler) handleDownloadRequest(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.CatalogFileID == "" {
		WriteError(w, http.StatusUnprocessableEntity, "catalog_file_id is required")
		return
	}

	slot, err := h.service.RequestDownload(r.Context(), req.CatalogFileID)
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, slot)
}

func (h *Handler) handleBlobGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, _, err := h.service.OpenBlob(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, id, time.Time{}, content)
}

func (h *Handler) handleBlobPut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.service.AppendChunk(r.Context(), id, http.MaxBytesReader(w, r.Body, MaxChunkBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("chunk exceeds %d bytes", tooLarge.Limit))
			return
		}
		HandleError(w, err)
		return
	}

	slog.Debug("chunk received", "id", id, "bytes", n)
	_ = WriteJSON(w, http.StatusOK, map[string]any{"catalog_record_id": id, "bytes_received": n})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
