// internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage is the only interface the intake service depends on for video files.
type Storage interface {
	Upload(ctx context.Context, file io.Reader, filename string, contentType string) (string, error)
}

// ── Local Storage ─────────────────────────────────────────────────────────────

type LocalStorage struct {
	UploadDir string
	BaseURL   string // e.g. "http://localhost:8083"
}

func NewLocalStorage(uploadDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{UploadDir: uploadDir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, file io.Reader, filename string, contentType string) (string, error) {
	// uuid names: no path traversal, no collisions, no leaked original names
	ext := strings.ToLower(filepath.Ext(filename))
	safeFilename := uuid.New().String() + ext

	filePath := filepath.Join(s.UploadDir, safeFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, &ctxReader{ctx: ctx, r: file}); err != nil {
		dst.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.BaseURL, safeFilename), nil
}

// ctxReader stops a copy once the request that started it is gone.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
