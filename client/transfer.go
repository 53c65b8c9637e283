package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/dataset"
	"github.com/lakehouselib/lakehouse/table"
)

type uploadSlot struct {
	UploadURL       string `json:"upload_url"`
	CatalogRecordID string `json:"catalog_record_id"`
	Method          string `json:"method"`
}

type downloadSlot struct {
	DownloadURL string `json:"download_url"`
}

// DownloadFile streams a file into outputDir, or the working directory when
// outputDir is empty, and returns the written path. A failed transfer
// leaves no partial file behind.
func (c *Client) DownloadFile(ctx context.Context, fileID, outputDir string) (*DownloadResult, error) {
	rec, err := c.FileRecord(ctx, fileID)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(rec.String("file_name"))
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("download %s: %w: record has no file_name", fileID, lakehouse.ErrResponseParse)
	}

	var slot downloadSlot
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/storage/files/download-request",
		body:   map[string]string{"catalog_file_id": fileID},
	}, &slot)
	if err != nil {
		return nil, fmt.Errorf("request download of %s: %w", fileID, err)
	}
	if slot.DownloadURL == "" {
		return nil, fmt.Errorf("request download of %s: %w: response has no download_url", fileID, lakehouse.ErrResponseParse)
	}

	if outputDir == "" {
		if outputDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}
	path := filepath.Join(outputDir, name)

	total := int64(-1)
	if v, ok := rec.Get("file_size"); ok {
		if size, ok := lakehouse.ToInt(v); ok {
			total = size
		}
	}

	c.logger.Info("downloading file", "file_id", fileID, "path", path)
	written, err := c.fetch(ctx, slot.DownloadURL, path, total)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	c.logger.Info("file downloaded", "file_id", fileID, "path", path, "size", written)

	return &DownloadResult{FileID: fileID, Path: path, Size: written}, nil
}

// fetch GETs a signed URL into path in DownloadChunkSize reads.
func (c *Client) fetch(ctx context.Context, signedURL, path string, total int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return 0, parseAPIError(resp.StatusCode, body)
	}
	if total < 0 && resp.ContentLength >= 0 {
		total = resp.ContentLength
	}

	file, err := os.Create(path) //#nosec G304 -- path is built from the caller's directory and a base name
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := c.copyChunks(file, resp.Body, total)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (c *Client) copyChunks(dst io.Writer, src io.Reader, total int64) (int64, error) {
	buf := make([]byte, DownloadChunkSize)
	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write file: %w", werr)
			}
			written += int64(n)
			c.reportProgress(written, total)
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("%w: read body: %w", lakehouse.ErrRequestTransport, err)
		}
	}
}

func (c *Client) reportProgress(done, total int64) {
	if c.progress != nil {
		c.progress(done, total)
	}
}

// UploadFile uploads a local file: it requests an upload slot, sends the
// file in UploadChunkSize chunks to the signed URL and marks the new
// catalog record ready. It returns the final record.
func (c *Client) UploadFile(ctx context.Context, opts UploadOptions) (lakehouse.Record, error) {
	if err := validateOptions(opts); err != nil {
		return lakehouse.Record{}, fmt.Errorf("upload: %w", err)
	}
	opts = opts.withDefaults()

	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return lakehouse.Record{}, fmt.Errorf("%w: %s is a directory", lakehouse.ErrInvalidInput, opts.LocalPath)
	}
	fileName := withExtension(opts.FileName, opts.LocalPath)

	var description any
	if opts.Description != "" {
		description = opts.Description
	}
	payload := lakehouse.NewRecord(
		"collection_catalog_id", opts.CollectionID,
		"file_name", fileName,
		"file_category", opts.Category,
		"file_version", opts.Version,
		"file_size", info.Size(),
		"public", opts.Public,
		"processing_level", opts.Level,
		"file_description", description,
	)

	var slot uploadSlot
	err = c.do(ctx, request{method: http.MethodPost, path: "/storage/files/upload-request", body: payload}, &slot)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("request upload of %s: %w", fileName, err)
	}
	if slot.UploadURL == "" || slot.CatalogRecordID == "" {
		return lakehouse.Record{}, fmt.Errorf("request upload of %s: %w: incomplete upload slot", fileName, lakehouse.ErrResponseParse)
	}

	c.logger.Info("uploading file", "file_name", fileName, "size", info.Size(), "record_id", slot.CatalogRecordID)
	if err := c.push(ctx, opts.LocalPath, slot, info.Size()); err != nil {
		return lakehouse.Record{}, fmt.Errorf("upload %s: %w", fileName, err)
	}

	var rec lakehouse.Record
	err = c.do(ctx, request{
		method: http.MethodPut,
		path:   "/catalog/set-file-status/" + slot.CatalogRecordID,
		body:   map[string]string{"status": "ready"},
	}, &rec)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("mark %s ready: %w", slot.CatalogRecordID, err)
	}

	c.logger.Info("file uploaded", "file_name", fileName, "record_id", slot.CatalogRecordID)
	return rec, nil
}

// withExtension appends the extension of source to name unless name already
// ends with it, ignoring case.
func withExtension(name, source string) string {
	ext := filepath.Ext(source)
	if ext == "" || strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// push sends the file in order, one chunk per request. Any method other
// than PUT is sent as POST.
func (c *Client) push(ctx context.Context, path string, slot uploadSlot, total int64) error {
	method := http.MethodPost
	if strings.EqualFold(slot.Method, http.MethodPut) {
		method = http.MethodPut
	}

	file, err := os.Open(path) //#nosec G304 -- path is user-provided input
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, UploadChunkSize)
	var sent int64
	for {
		n, readErr := io.ReadFull(file, buf)
		if n > 0 {
			if err := c.sendChunk(ctx, method, slot.UploadURL, buf[:n]); err != nil {
				return err
			}
			sent += int64(n)
			c.reportProgress(sent, total)
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read file: %w", readErr)
		}
	}
}

func (c *Client) sendChunk(ctx context.Context, method, signedURL string, chunk []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, signedURL, bytes.NewReader(chunk))
	if err != nil {
		return fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", lakehouse.ErrRequestTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}
	return nil
}

// UploadTable stages t as a CSV file and uploads it as name.csv with the
// structured category. The staged file is removed however the upload ends.
func (c *Client) UploadTable(ctx context.Context, t *table.Table, name string, opts TableUploadOptions) (lakehouse.Record, error) {
	if t == nil {
		return lakehouse.Record{}, fmt.Errorf("%w: table is nil", lakehouse.ErrInvalidInput)
	}
	if name == "" {
		return lakehouse.Record{}, fmt.Errorf("%w: table name is required", lakehouse.ErrInvalidInput)
	}

	staged, err := dataset.WriteCSVFile(c.scratchDir, t)
	if err != nil {
		return lakehouse.Record{}, fmt.Errorf("stage table %s: %w", name, err)
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("failed to remove staged table", "path", staged, "error", err)
		}
	}()

	return c.UploadFile(ctx, UploadOptions{
		LocalPath:    staged,
		FileName:     name + ".csv",
		CollectionID: opts.CollectionID,
		Category:     lakehouse.FileStructured,
		Description:  opts.Description,
		Version:      opts.Version,
		Public:       opts.Public,
		Level:        opts.Level,
	})
}

// LoadDataset downloads a file into a scratch directory, decodes it with
// dataset.Load and removes the download.
func (c *Client) LoadDataset(ctx context.Context, fileID string) (*dataset.Dataset, error) {
	dir, err := os.MkdirTemp(c.scratchDir, "lakehouse-load-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	res, err := c.DownloadFile(ctx, fileID, dir)
	if err != nil {
		return nil, err
	}
	return dataset.Load(res.Path)
}
