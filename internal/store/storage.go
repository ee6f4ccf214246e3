package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoredObject is where an uploaded asset ended up.
type StoredObject struct {
	URL string // public CDN location
	Key string // storage key within the backend
}

// ObjectStorage uploads immutable assets. Uploads are assumed durable and idempotent per
// key: storing the same key twice overwrites with identical content.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (*StoredObject, error)
}

// FSStorage implements [ObjectStorage] on the local filesystem, mapping keys to files
// under a root directory and to URLs under a CDN base.
type FSStorage struct {
	root       string
	cdnBaseURL string
}

// NewFSStorage creates an FSStorage rooted at the given directory.
func NewFSStorage(root, cdnBaseURL string) *FSStorage {
	return &FSStorage{root: root, cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/")}
}

// Upload writes the asset under the storage root and returns its CDN-style URL.
func (s *FSStorage) Upload(ctx context.Context, data []byte, key, contentType string) (*StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write object: %w", err)
	}

	return &StoredObject{
		URL: s.cdnBaseURL + "/" + key,
		Key: key,
	}, nil
}
