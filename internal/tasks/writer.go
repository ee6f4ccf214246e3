package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// writeBookmarks re-validates bookmark nodes and bulk-inserts the valid ones with metadata
// marked pending. Validation runs over large chunks so a pathological export cannot hold
// everything in flight at once; inserts use the smaller batch size shared with collections.
// Bookmarks whose folder never resolved to a collection land at the root (NULL collection).
// The rows-created total is asserted against the valid count; a mismatch aborts the
// transaction, so an import either creates every valid bookmark or none.
func (e *ImportEngine) writeBookmarks(ctx context.Context, tx *sql.Tx, userID string, entries []models.TreeNode, idMap map[string]string) ([]*models.Bookmark, int, error) {
	var valid []*models.Bookmark
	skipped := 0

	for start := 0; start < len(entries); start += e.validationChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("bookmark write interrupted: %w", err)
		}

		end := min(start+e.validationChunkSize, len(entries))
		for _, n := range entries[start:end] {
			if err := models.ValidateURL(n.URL); err != nil {
				skipped++
				continue
			}

			var collectionID *string
			if realID, ok := idMap[n.ParentTempID]; ok {
				collectionID = &realID
			}
			valid = append(valid, models.NewBookmark(userID, n.URL, n.Title, collectionID))
		}
	}

	created := 0
	for start := 0; start < len(valid); start += e.bookmarkChunkSize {
		end := min(start+e.bookmarkChunkSize, len(valid))
		n, err := e.bookmarks.CreateBatchTx(tx, valid[start:end])
		if err != nil {
			return nil, 0, err
		}
		created += n
	}

	if created != len(valid) {
		return nil, 0, fmt.Errorf("%w: wrote %d of %d bookmarks", shared.ErrPartialWrite, created, len(valid))
	}

	return valid, skipped, nil
}
