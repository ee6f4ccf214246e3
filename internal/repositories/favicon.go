package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// FaviconRepository handles persistence for [models.Favicon].
//
// The favicon store is the only caller; it serializes writes per domain with a keyed lock,
// so this repository stays a plain CRUD surface over the two dedup axes (hash and domain).
type FaviconRepository struct {
	db *sql.DB
}

// NewFaviconRepository creates a new FaviconRepository with the given database connection
func NewFaviconRepository(db *sql.DB) *FaviconRepository {
	return &FaviconRepository{db: db}
}

// Create inserts a new favicon row with a generated ID
func (r *FaviconRepository) Create(f *models.Favicon) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	f.SetID(shared.GenerateID())

	query := `
		INSERT INTO favicons (id, hash, domain, url, storage_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, f.ID(), f.Hash(), f.Domain(), f.URL(), f.StorageKey(), f.CreatedAt(), f.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert favicon: %w", err)
	}

	return nil
}

// Update rewrites an existing domain row's content hash, CDN URL, and storage key
func (r *FaviconRepository) Update(f *models.Favicon) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	f.SetUpdatedAt(now)

	query := `
		UPDATE favicons
		SET hash = ?, url = ?, storage_key = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, f.Hash(), f.URL(), f.StorageKey(), now, f.ID())
	if err != nil {
		return fmt.Errorf("failed to update favicon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("favicon %s: %w", f.ID(), shared.ErrNotFound)
	}

	return nil
}

// GetByHash retrieves a favicon by content hash; returns nil without error when absent
func (r *FaviconRepository) GetByHash(hash string) (*models.Favicon, error) {
	return r.getWhere("hash = ?", hash)
}

// GetByDomain retrieves the current favicon row for a domain; returns nil without error when absent
func (r *FaviconRepository) GetByDomain(domain string) (*models.Favicon, error) {
	return r.getWhere("domain = ?", domain)
}

// Get retrieves a favicon by ID
func (r *FaviconRepository) Get(id string) (*models.Favicon, error) {
	f, err := r.getWhere("id = ?", id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("favicon %s: %w", id, shared.ErrNotFound)
	}
	return f, nil
}

func (r *FaviconRepository) getWhere(where string, arg any) (*models.Favicon, error) {
	query := `
		SELECT id, hash, domain, url, storage_key, created_at, updated_at
		FROM favicons
		WHERE ` + where

	var (
		id         string
		hash       string
		domain     string
		url        string
		storageKey string
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := r.db.QueryRow(query, arg).Scan(&id, &hash, &domain, &url, &storageKey, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan favicon: %w", err)
	}

	f := models.NewFavicon(hash, domain, url, storageKey)
	f.SetID(id)
	f.SetCreatedAt(createdAt)
	f.SetUpdatedAt(updatedAt)
	return f, nil
}
