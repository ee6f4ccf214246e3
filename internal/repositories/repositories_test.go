package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A pooled :memory: database is one database per connection; pin to one.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		t.Fatalf("transaction failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestCollectionRepository(t *testing.T) {
	t.Run("CreateBatchAssignsIDs", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCollectionRepository(db)

		root := models.NewCollection("user-1", "Reading", nil)
		inTx(t, db, func(tx *sql.Tx) error {
			return repo.CreateBatchTx(tx, []*models.Collection{root})
		})

		if root.ID() == "" {
			t.Fatal("batch insert should assign an ID")
		}

		child := models.NewCollection("user-1", "Articles", strPtr(root.ID()))
		inTx(t, db, func(tx *sql.Tx) error {
			return repo.CreateBatchTx(tx, []*models.Collection{child})
		})

		got, err := repo.Get(child.ID())
		if err != nil {
			t.Fatalf("failed to get collection: %v", err)
		}
		if got.Name() != "Articles" {
			t.Errorf("name = %q", got.Name())
		}
		if got.ParentID() == nil || *got.ParentID() != root.ID() {
			t.Errorf("parent = %v, want %q", got.ParentID(), root.ID())
		}
	})

	t.Run("EmptyBatchIsNoop", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCollectionRepository(db)

		inTx(t, db, func(tx *sql.Tx) error {
			return repo.CreateBatchTx(tx, nil)
		})

		count, err := repo.CountByUser("user-1")
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})

	t.Run("GetMissingReturnsNotFound", func(t *testing.T) {
		repo := NewCollectionRepository(setupTestDB(t))

		_, err := repo.Get("no-such-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListByUserScopedToOwner", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCollectionRepository(db)

		inTx(t, db, func(tx *sql.Tx) error {
			return repo.CreateBatchTx(tx, []*models.Collection{
				models.NewCollection("user-1", "Mine", nil),
				models.NewCollection("user-2", "Theirs", nil),
			})
		})

		mine, err := repo.ListByUser("user-1")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(mine) != 1 || mine[0].Name() != "Mine" {
			t.Errorf("ListByUser returned %d rows", len(mine))
		}
	})
}

func TestBookmarkRepository(t *testing.T) {
	t.Run("CreateBatchReportsCount", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBookmarkRepository(db)

		bookmarks := []*models.Bookmark{
			models.NewBookmark("user-1", "https://example.com/a", "A", nil),
			models.NewBookmark("user-1", "https://example.com/b", "B", nil),
			models.NewBookmark("user-1", "https://example.com/c", "C", nil),
		}

		var created int
		inTx(t, db, func(tx *sql.Tx) error {
			var err error
			created, err = repo.CreateBatchTx(tx, bookmarks)
			return err
		})

		if created != 3 {
			t.Errorf("created = %d, want 3", created)
		}
		for _, b := range bookmarks {
			if b.ID() == "" {
				t.Errorf("bookmark %q missing ID", b.URL())
			}
		}
	})

	t.Run("NewBookmarksArePending", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBookmarkRepository(db)

		b := models.NewBookmark("user-1", "https://example.com", "Example", nil)
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := repo.CreateBatchTx(tx, []*models.Bookmark{b})
			return err
		})

		pending, err := repo.ListPending("user-1")
		if err != nil {
			t.Fatalf("failed to list pending: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("pending = %d, want 1", len(pending))
		}
		if !pending[0].MetadataPending() {
			t.Error("new bookmark should be metadata pending")
		}
	})

	t.Run("SettleMetadataClearsPending", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBookmarkRepository(db)
		favicons := NewFaviconRepository(db)

		favicon := models.NewFavicon("hash-1", "example.com", "http://cdn/fav.png", "favicons/hash-1.png")
		if err := favicons.Create(favicon); err != nil {
			t.Fatalf("failed to create favicon: %v", err)
		}

		b := models.NewBookmark("user-1", "https://example.com", "Placeholder", nil)
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := repo.CreateBatchTx(tx, []*models.Bookmark{b})
			return err
		})

		faviconID := favicon.ID()
		faviconURL := favicon.URL()
		if err := repo.SettleMetadata(b.ID(), "Resolved Title", &faviconID, &faviconURL); err != nil {
			t.Fatalf("failed to settle: %v", err)
		}

		got, err := repo.Get(b.ID())
		if err != nil {
			t.Fatalf("failed to get bookmark: %v", err)
		}
		if got.MetadataPending() {
			t.Error("bookmark should no longer be pending")
		}
		if got.Title() != "Resolved Title" {
			t.Errorf("title = %q", got.Title())
		}
		if got.FaviconID() == nil || *got.FaviconID() != faviconID {
			t.Errorf("favicon id = %v", got.FaviconID())
		}

		pending, err := repo.ListPending("user-1")
		if err != nil {
			t.Fatalf("failed to list pending: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("pending = %d, want 0", len(pending))
		}
	})

	t.Run("SettleWithoutFaviconLeavesNulls", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBookmarkRepository(db)

		b := models.NewBookmark("user-1", "https://example.com", "Placeholder", nil)
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := repo.CreateBatchTx(tx, []*models.Bookmark{b})
			return err
		})

		if err := repo.SettleMetadata(b.ID(), "example.com", nil, nil); err != nil {
			t.Fatalf("failed to settle: %v", err)
		}

		got, err := repo.Get(b.ID())
		if err != nil {
			t.Fatalf("failed to get bookmark: %v", err)
		}
		if got.FaviconID() != nil || got.FaviconURL() != nil {
			t.Error("favicon columns should stay null")
		}
		if got.MetadataPending() {
			t.Error("bookmark should be settled")
		}
	})

	t.Run("CollectionMembershipPersists", func(t *testing.T) {
		db := setupTestDB(t)
		collections := NewCollectionRepository(db)
		repo := NewBookmarkRepository(db)

		folder := models.NewCollection("user-1", "Work", nil)
		inTx(t, db, func(tx *sql.Tx) error {
			return collections.CreateBatchTx(tx, []*models.Collection{folder})
		})

		b := models.NewBookmark("user-1", "https://example.com", "Example", strPtr(folder.ID()))
		inTx(t, db, func(tx *sql.Tx) error {
			_, err := repo.CreateBatchTx(tx, []*models.Bookmark{b})
			return err
		})

		got, err := repo.Get(b.ID())
		if err != nil {
			t.Fatalf("failed to get bookmark: %v", err)
		}
		if got.CollectionID() == nil || *got.CollectionID() != folder.ID() {
			t.Errorf("collection = %v, want %q", got.CollectionID(), folder.ID())
		}
	})
}

func TestFaviconRepository(t *testing.T) {
	t.Run("CreateAndLookup", func(t *testing.T) {
		repo := NewFaviconRepository(setupTestDB(t))

		f := models.NewFavicon("hash-1", "example.com", "http://cdn/fav.png", "favicons/hash-1.png")
		if err := repo.Create(f); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		byHash, err := repo.GetByHash("hash-1")
		if err != nil {
			t.Fatalf("failed to get by hash: %v", err)
		}
		if byHash == nil || byHash.ID() != f.ID() {
			t.Error("GetByHash should return the created row")
		}

		byDomain, err := repo.GetByDomain("example.com")
		if err != nil {
			t.Fatalf("failed to get by domain: %v", err)
		}
		if byDomain == nil || byDomain.ID() != f.ID() {
			t.Error("GetByDomain should return the created row")
		}
	})

	t.Run("MissingRowsAreNilNotError", func(t *testing.T) {
		repo := NewFaviconRepository(setupTestDB(t))

		byHash, err := repo.GetByHash("nope")
		if err != nil || byHash != nil {
			t.Errorf("GetByHash = (%v, %v), want (nil, nil)", byHash, err)
		}

		byDomain, err := repo.GetByDomain("nope.example.com")
		if err != nil || byDomain != nil {
			t.Errorf("GetByDomain = (%v, %v), want (nil, nil)", byDomain, err)
		}
	})

	t.Run("UpdateRewritesContent", func(t *testing.T) {
		repo := NewFaviconRepository(setupTestDB(t))

		f := models.NewFavicon("hash-1", "example.com", "http://cdn/old.png", "favicons/hash-1.png")
		if err := repo.Create(f); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		f.SetContent("hash-2", "http://cdn/new.png", "favicons/hash-2.png")
		if err := repo.Update(f); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, err := repo.GetByDomain("example.com")
		if err != nil {
			t.Fatalf("failed to get by domain: %v", err)
		}
		if got.Hash() != "hash-2" || got.StorageKey() != "favicons/hash-2.png" {
			t.Errorf("row not rewritten: hash=%q key=%q", got.Hash(), got.StorageKey())
		}

		if stale, _ := repo.GetByHash("hash-1"); stale != nil {
			t.Error("old hash should no longer resolve")
		}
	})

	t.Run("DuplicateHashRejected", func(t *testing.T) {
		repo := NewFaviconRepository(setupTestDB(t))

		if err := repo.Create(models.NewFavicon("hash-1", "a.example.com", "u", "k")); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := repo.Create(models.NewFavicon("hash-1", "b.example.com", "u", "k")); err == nil {
			t.Error("expected unique constraint violation")
		}
	})
}
