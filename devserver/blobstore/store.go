// Package blobstore keeps uploaded file contents on the local file system.
// Blobs are flat files under a sandboxed root; uploads arrive as a sequence
// of chunks appended in order.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Store provides blob storage operations rooted at a directory.
type Store struct {
	root *os.Root
}

// New creates a Store over root. The root prevents path traversal.
func New(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens a blob for reading together with its size.
func (s *Store) Open(ctx context.Context, id string) (io.ReadSeekCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := s.root.Open(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("open blob: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat blob: %w", err)
	}

	return f, info.Size(), nil
}

// Size returns the current size of a blob.
func (s *Store) Size(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := s.root.Stat(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("stat blob: %w", err)
	}
	return info.Size(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Append writes content to the end of a blob, creating it on the first
// chunk, and returns the number of bytes written.
func (s *Store) Append(ctx context.Context, id string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := s.root.OpenFile(id, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open blob for append: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close blob", "id", id, "err", closeErr)
		}
	}()

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return n, fmt.Errorf("append blob: %w", err)
	}

	if err := f.Sync(); err != nil {
		return n, fmt.Errorf("sync blob: %w", err)
	}
	return n, nil
}

// Write atomically replaces a blob using a temp file and rename.
func (s *Store) Write(ctx context.Context, id string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmpFile := tmpFileName()
	t, err := s.root.Create(tmpFile)
	if err != nil {
		return 0, fmt.Errorf("could not open temp file: %w", err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	n, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("could not copy blob contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written blob: %w", err)
	}

	if err := s.root.Rename(tmpFile, id); err != nil {
		return 0, fmt.Errorf("failed to rename blob: %w", err)
	}

	success = true
	return n, nil
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(id); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("could not delete blob: %w", err)
	}
	return nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
