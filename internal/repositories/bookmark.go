package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// BookmarkRepository handles persistence for [models.Bookmark].
//
// Bulk creation happens inside the import transaction; metadata settlement happens later,
// one row at a time, from concurrent enrichment workers.
type BookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new BookmarkRepository with the given database connection
func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// CreateBatchTx bulk-inserts bookmarks in a single statement inside the given transaction,
// assigning a generated ID to each, and returns the number of rows created.
func (r *BookmarkRepository) CreateBatchTx(tx *sql.Tx, bookmarks []*models.Bookmark) (int, error) {
	if len(bookmarks) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(bookmarks)*10)
	for _, b := range bookmarks {
		if err := b.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
		b.SetID(shared.GenerateID())
		args = append(args,
			b.ID(),
			b.UserID(),
			b.URL(),
			b.Title(),
			b.CollectionID(),
			b.MetadataPending(),
			b.FaviconID(),
			b.FaviconURL(),
			b.CreatedAt(),
			b.UpdatedAt(),
		)
	}

	query := `
		INSERT INTO bookmarks (id, user_id, url, title, collection_id, is_metadata_pending, favicon_id, favicon_url, created_at, updated_at)
		VALUES ` + bulkPlaceholders(len(bookmarks), 10)

	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bookmarks: %w", err)
	}

	return rowsCreated(result)
}

// Get retrieves a bookmark by ID
func (r *BookmarkRepository) Get(id string) (*models.Bookmark, error) {
	query := selectBookmarks + " WHERE id = ?"
	return scanBookmark(r.db.QueryRow(query, id))
}

// ListByUser retrieves all bookmarks belonging to a user, oldest first
func (r *BookmarkRepository) ListByUser(userID string) ([]*models.Bookmark, error) {
	query := selectBookmarks + " WHERE user_id = ? ORDER BY created_at ASC, id ASC"
	return r.list(query, userID)
}

// ListPending retrieves a user's bookmarks still waiting for metadata enrichment
func (r *BookmarkRepository) ListPending(userID string) ([]*models.Bookmark, error) {
	query := selectBookmarks + " WHERE user_id = ? AND is_metadata_pending = 1 ORDER BY created_at ASC, id ASC"
	return r.list(query, userID)
}

// CountByUser returns the number of bookmarks a user owns.
func (r *BookmarkRepository) CountByUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM bookmarks WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return count, nil
}

// SettleMetadata writes a bookmark's enrichment result: the final title, the favicon
// reference (either may be empty), and a cleared pending flag. Every enrichment job ends
// here exactly once, success or failure.
func (r *BookmarkRepository) SettleMetadata(id, title string, faviconID, faviconURL *string) error {
	query := `
		UPDATE bookmarks
		SET title = ?, favicon_id = ?, favicon_url = ?, is_metadata_pending = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, title, faviconID, faviconURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to settle bookmark metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bookmark %s: %w", id, shared.ErrNotFound)
	}

	return nil
}

const selectBookmarks = `
	SELECT id, user_id, url, title, collection_id, is_metadata_pending, favicon_id, favicon_url, created_at, updated_at
	FROM bookmarks`

func (r *BookmarkRepository) list(query string, args ...any) ([]*models.Bookmark, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		b, err := scanBookmarkRow(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return bookmarks, nil
}

// scanBookmark scans a single [sql.Row] into a [models.Bookmark]
func scanBookmark(row *sql.Row) (*models.Bookmark, error) {
	var (
		id           string
		userID       string
		url          string
		title        string
		collectionID sql.NullString
		pending      bool
		faviconID    sql.NullString
		faviconURL   sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &userID, &url, &title, &collectionID, &pending, &faviconID, &faviconURL, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bookmark: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	return buildBookmark(id, userID, url, title, collectionID, pending, faviconID, faviconURL, createdAt, updatedAt), nil
}

// scanBookmarkRow scans a row from [sql.Rows] into a [models.Bookmark]
func scanBookmarkRow(rows *sql.Rows) (*models.Bookmark, error) {
	var (
		id           string
		userID       string
		url          string
		title        string
		collectionID sql.NullString
		pending      bool
		faviconID    sql.NullString
		faviconURL   sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := rows.Scan(&id, &userID, &url, &title, &collectionID, &pending, &faviconID, &faviconURL, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	return buildBookmark(id, userID, url, title, collectionID, pending, faviconID, faviconURL, createdAt, updatedAt), nil
}

func buildBookmark(id, userID, url, title string, collectionID sql.NullString, pending bool, faviconID, faviconURL sql.NullString, createdAt, updatedAt time.Time) *models.Bookmark {
	var collection *string
	if collectionID.Valid {
		collection = &collectionID.String
	}

	b := models.NewBookmark(userID, url, title, collection)
	b.SetID(id)
	b.SetMetadataPending(pending)
	if faviconID.Valid && faviconURL.Valid {
		b.SetFavicon(faviconID.String, faviconURL.String)
	}
	b.SetCreatedAt(createdAt)
	b.SetUpdatedAt(updatedAt)
	return b
}
