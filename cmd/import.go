package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertmoss/linkhive/internal/formatter"
	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/shared"
	"github.com/desertmoss/linkhive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Import parses a bookmark export file, writes its collections and bookmarks, and waits
// for background enrichment to drain before reporting.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: path to a bookmark export file", shared.ErrMissingArgument)
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	config := r.loadConfig(cmd.String("config"))
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	jobID := cmd.String("job")
	if jobID == "" {
		jobID = shared.GenerateID()
	}
	userID := cmd.String("user")

	notifier := tasks.NewLogNotifier(r.logger)
	tracker := r.buildTracker(db, config)

	var pool *tasks.EnrichmentPool
	var queue tasks.Enqueuer
	if !cmd.Bool("skip-enrich") {
		pool = r.buildPool(db, config, notifier, tracker)
		pool.Start(ctx)
		queue = pool
	}

	engine := tasks.NewImportEngine(tasks.ImportEngineOpts{
		DB:          db,
		Collections: repositories.NewCollectionRepository(db),
		Bookmarks:   repositories.NewBookmarkRepository(db),
		Tracker:     tracker,
		Queue:       queue,
		Notifier:    notifier,
		Logger:      r.logger,
		Import:      config.Import,
	})

	r.logger.Info("starting import", "file", path, "user", userID, "job", jobID)

	report, err := engine.Run(ctx, tasks.ImportJob{
		HTML:   string(doc),
		UserID: userID,
		JobID:  jobID,
	})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if pool != nil {
		r.logger.Info("waiting for enrichment to finish", "job", jobID)
		if err := pool.Close(); err != nil {
			return fmt.Errorf("enrichment interrupted: %w", err)
		}
	}

	r.writePlain("%s", formatter.RenderImportReport(report))
	return r.writePlainln("Job ID: %s", jobID)
}
