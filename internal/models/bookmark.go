package models

import (
	"fmt"
	"time"
)

// Bookmark represents a saved link. Bookmarks are created with metadata pending and are
// settled exactly once by the enrichment pipeline, either with fetched metadata or with
// fallback values after the fetch fails.
type Bookmark struct {
	id              string
	userID          string
	url             string
	title           string
	collectionID    *string
	metadataPending bool
	faviconID       *string
	faviconURL      *string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBookmark creates a Bookmark with metadata pending and no favicon.
// The repository assigns the ID at insert time.
func NewBookmark(userID, url, title string, collectionID *string) *Bookmark {
	now := time.Now()
	return &Bookmark{
		userID:          userID,
		url:             url,
		title:           title,
		collectionID:    collectionID,
		metadataPending: true,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (b *Bookmark) ID() string            { return b.id }
func (b *Bookmark) UserID() string        { return b.userID }
func (b *Bookmark) URL() string           { return b.url }
func (b *Bookmark) Title() string         { return b.title }
func (b *Bookmark) CollectionID() *string { return b.collectionID }
func (b *Bookmark) MetadataPending() bool { return b.metadataPending }
func (b *Bookmark) FaviconID() *string    { return b.faviconID }
func (b *Bookmark) FaviconURL() *string   { return b.faviconURL }
func (b *Bookmark) CreatedAt() time.Time  { return b.createdAt }
func (b *Bookmark) UpdatedAt() time.Time  { return b.updatedAt }

func (b *Bookmark) SetID(id string)          { b.id = id }
func (b *Bookmark) SetTitle(title string)    { b.title = title }
func (b *Bookmark) SetCreatedAt(t time.Time) { b.createdAt = t }
func (b *Bookmark) SetUpdatedAt(t time.Time) { b.updatedAt = t }

// SetFavicon records the stored favicon reference for this bookmark.
func (b *Bookmark) SetFavicon(faviconID, faviconURL string) {
	b.faviconID = &faviconID
	b.faviconURL = &faviconURL
}

// SetMetadataPending flips the enrichment state flag.
func (b *Bookmark) SetMetadataPending(pending bool) {
	b.metadataPending = pending
}

// Validate checks that the bookmark has an owner and a well-formed http(s) URL.
func (b *Bookmark) Validate() error {
	if b.userID == "" {
		return fmt.Errorf("bookmark missing user id")
	}
	if err := ValidateURL(b.url); err != nil {
		return fmt.Errorf("bookmark URL invalid: %w", err)
	}
	return nil
}
