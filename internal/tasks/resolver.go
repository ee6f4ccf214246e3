package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
)

// resolveCollections persists folder nodes as collections in dependency order and returns
// the mapping from parser temp ids to database ids. Each round scans the pending set in
// document order for ready folders (root level, or parent already persisted) and
// bulk-inserts them; a round that makes no progress while folders remain pending means the
// parent references form a cycle, which fails the whole import.
func (e *ImportEngine) resolveCollections(ctx context.Context, tx *sql.Tx, userID string, folders []models.TreeNode) (map[string]string, error) {
	idMap := make(map[string]string, len(folders))
	pending := folders

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collection resolution interrupted: %w", err)
		}

		var ready []models.TreeNode
		var blocked []models.TreeNode
		for _, f := range pending {
			if f.ParentTempID == "" {
				ready = append(ready, f)
				continue
			}
			if _, ok := idMap[f.ParentTempID]; ok {
				ready = append(ready, f)
				continue
			}
			blocked = append(blocked, f)
		}

		if len(ready) == 0 {
			return nil, fmt.Errorf("%w: %d folders have unresolvable parents", shared.ErrCircularReference, len(blocked))
		}

		for start := 0; start < len(ready); start += e.collectionBatchSize {
			end := min(start+e.collectionBatchSize, len(ready))
			batch := ready[start:end]

			collections := make([]*models.Collection, len(batch))
			for i, f := range batch {
				var parentID *string
				if f.ParentTempID != "" {
					realID := idMap[f.ParentTempID]
					parentID = &realID
				}
				collections[i] = models.NewCollection(userID, f.Title, parentID)
			}

			if err := e.collections.CreateBatchTx(tx, collections); err != nil {
				return nil, err
			}

			for i, f := range batch {
				idMap[f.TempID] = collections[i].ID()
			}
		}

		pending = blocked
	}

	return idMap, nil
}
