package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path"
	"strings"
)

// Store archives generated documents under caller-chosen keys.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var (
	// ErrNotFound is returned by Open when no object exists under the key.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey rejects keys that could escape the store root.
	ErrInvalidKey = errors.New("invalid object key")
)

// OwnerPrefix hides the user id behind a stable hex digest.
func OwnerPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// ExportKey is <owner>/exports/<exportID>_<fileName>.
func ExportKey(userID, exportID, fileName string) (string, error) {
	name, err := CleanFileName(fileName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(exportID) == "" || strings.ContainsAny(exportID, `/\`) {
		return "", ErrInvalidKey
	}
	return path.Join(OwnerPrefix(userID), "exports", exportID+"_"+name), nil
}

// CleanFileName flattens path separators and rejects traversal.
func CleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidKey
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", `\`, "_").Replace(s)
	if s == "" {
		return "", ErrInvalidKey
	}
	return s, nil
}

// ValidateKey accepts relative slash-separated keys without dot segments.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
