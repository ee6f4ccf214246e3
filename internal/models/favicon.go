package models

import (
	"fmt"
	"time"
)

// Favicon is a content-addressed favicon asset. Hash is a digest of the stored bytes and is
// unique across all rows; Domain is a second dedup axis with at most one current row per domain.
// Rows are created and mutated exclusively by the favicon store.
type Favicon struct {
	id         string
	hash       string
	domain     string
	url        string
	storageKey string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewFavicon creates a Favicon row for a freshly uploaded asset.
func NewFavicon(hash, domain, url, storageKey string) *Favicon {
	now := time.Now()
	return &Favicon{
		hash:       hash,
		domain:     domain,
		url:        url,
		storageKey: storageKey,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (f *Favicon) ID() string           { return f.id }
func (f *Favicon) Hash() string         { return f.hash }
func (f *Favicon) Domain() string       { return f.domain }
func (f *Favicon) URL() string          { return f.url }
func (f *Favicon) StorageKey() string   { return f.storageKey }
func (f *Favicon) CreatedAt() time.Time { return f.createdAt }
func (f *Favicon) UpdatedAt() time.Time { return f.updatedAt }

func (f *Favicon) SetID(id string)          { f.id = id }
func (f *Favicon) SetCreatedAt(t time.Time) { f.createdAt = t }
func (f *Favicon) SetUpdatedAt(t time.Time) { f.updatedAt = t }

// SetContent points an existing domain row at new asset content.
func (f *Favicon) SetContent(hash, url, storageKey string) {
	f.hash = hash
	f.url = url
	f.storageKey = storageKey
}

// Validate checks that the favicon carries both dedup keys and a storage location.
func (f *Favicon) Validate() error {
	if f.hash == "" {
		return fmt.Errorf("favicon missing content hash")
	}
	if f.domain == "" {
		return fmt.Errorf("favicon missing domain")
	}
	if f.storageKey == "" {
		return fmt.Errorf("favicon missing storage key")
	}
	return nil
}
