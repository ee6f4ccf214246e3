package main

import (
	"context"

	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Enrich re-runs metadata enrichment for every bookmark of a user still marked pending.
// Jobs run standalone, without an import job attached, so no progress counters move.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	userID := cmd.String("user")
	bookmarks := repositories.NewBookmarkRepository(db)

	pending, err := bookmarks.ListPending(userID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return r.writePlainln("No pending bookmarks for user %s", userID)
	}

	r.logger.Info("enriching pending bookmarks", "user", userID, "count", len(pending))

	pool := r.buildPool(db, config, tasks.NewLogNotifier(r.logger), nil)
	pool.Start(ctx)
	for _, b := range pending {
		pool.Enqueue(tasks.EnrichmentJob{
			BookmarkID:  b.ID(),
			UserID:      userID,
			URL:         b.URL(),
			OnlyFavicon: cmd.Bool("only-favicon"),
		})
	}
	if err := pool.Close(); err != nil {
		return err
	}

	return r.writePlainln("Enriched %d bookmarks", len(pending))
}
