package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// CollectionRepository handles persistence for [models.Collection].
//
// Hierarchy writes happen in parent-before-child order: parent_id carries a foreign key to
// collections.id, so every batch handed to CreateBatchTx must only reference parents that
// are already committed within the same transaction.
type CollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new CollectionRepository with the given database connection
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// CreateBatchTx bulk-inserts collections in a single statement inside the given transaction,
// assigning a generated ID to each. Order within the batch is preserved.
func (r *CollectionRepository) CreateBatchTx(tx *sql.Tx, collections []*models.Collection) error {
	if len(collections) == 0 {
		return nil
	}

	args := make([]any, 0, len(collections)*6)
	for _, c := range collections {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		c.SetID(shared.GenerateID())
		args = append(args, c.ID(), c.UserID(), c.Name(), c.ParentID(), c.CreatedAt(), c.UpdatedAt())
	}

	query := `
		INSERT INTO collections (id, user_id, name, parent_id, created_at, updated_at)
		VALUES ` + bulkPlaceholders(len(collections), 6)

	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert collections: %w", err)
	}

	return nil
}

// Get retrieves a collection by ID
func (r *CollectionRepository) Get(id string) (*models.Collection, error) {
	query := `
		SELECT id, user_id, name, parent_id, created_at, updated_at
		FROM collections
		WHERE id = ?
	`

	return scanCollection(r.db.QueryRow(query, id))
}

// ListByUser retrieves all collections belonging to a user, oldest first
func (r *CollectionRepository) ListByUser(userID string) ([]*models.Collection, error) {
	query := `
		SELECT id, user_id, name, parent_id, created_at, updated_at
		FROM collections
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var collections []*models.Collection
	for rows.Next() {
		c, err := scanCollectionRow(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return collections, nil
}

// CountByUser returns the number of collections a user owns.
func (r *CollectionRepository) CountByUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM collections WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count collections: %w", err)
	}
	return count, nil
}

// scanCollection scans a single [sql.Row] into a [models.Collection]
func scanCollection(row *sql.Row) (*models.Collection, error) {
	var (
		id        string
		userID    string
		name      string
		parentID  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &userID, &name, &parentID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	return buildCollection(id, userID, name, parentID, createdAt, updatedAt), nil
}

// scanCollectionRow scans a row from [sql.Rows] into a [models.Collection]
func scanCollectionRow(rows *sql.Rows) (*models.Collection, error) {
	var (
		id        string
		userID    string
		name      string
		parentID  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&id, &userID, &name, &parentID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	return buildCollection(id, userID, name, parentID, createdAt, updatedAt), nil
}

func buildCollection(id, userID, name string, parentID sql.NullString, createdAt, updatedAt time.Time) *models.Collection {
	var parent *string
	if parentID.Valid {
		parent = &parentID.String
	}

	c := models.NewCollection(userID, name, parent)
	c.SetID(id)
	c.SetCreatedAt(createdAt)
	c.SetUpdatedAt(updatedAt)
	return c
}
