package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"docforms-backend/internal/shared/storage/object"
)

// Store keeps objects as files below baseDir.
type Store struct {
	baseDir string
}

// New creates a filesystem store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes to a temporary file and renames it into place so readers never
// observe a partial document.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	fullPath, err := s.resolve(ctx, key)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return 0, fmt.Errorf("rename: %w", err)
	}
	_ = contentType
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes an object; deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) resolve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := object.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

var _ object.Store = (*Store)(nil)
