// Package tasks orchestrates bookmark imports and the background enrichment that follows
// them. [ImportEngine] turns a parsed export file into persisted collections and bookmarks
// inside one transaction, then hands every created bookmark to an [Enqueuer] so the
// [EnrichmentPool] can fill in page metadata and favicons asynchronously.
package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/parser"
	"github.com/desertmoss/linkhive/internal/progress"
	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/shared"
)

const (
	defaultCollectionBatchSize = 100
	defaultBookmarkChunkSize   = 100
	defaultValidationChunkSize = 1000
)

// ImportJob is one request to import a bookmark export file for a user.
type ImportJob struct {
	HTML   string
	UserID string
	JobID  string
}

// ImportReport summarizes what an import created.
type ImportReport struct {
	CollectionsCreated int
	BookmarksCreated   int
	InvalidSkipped     int
}

// Enqueuer accepts enrichment jobs for asynchronous processing.
type Enqueuer interface {
	Enqueue(job EnrichmentJob)
}

// ImportEngine drives the import pipeline: parse, resolve folders into collections,
// batch-write bookmarks, initialize progress, and enqueue enrichment.
type ImportEngine struct {
	db          *sql.DB
	collections *repositories.CollectionRepository
	bookmarks   *repositories.BookmarkRepository
	tracker     *progress.Tracker
	queue       Enqueuer
	notifier    Notifier
	logger      *log.Logger

	collectionBatchSize int
	bookmarkChunkSize   int
	validationChunkSize int
}

// ImportEngineOpts contains configuration options for creating an ImportEngine.
type ImportEngineOpts struct {
	DB          *sql.DB
	Collections *repositories.CollectionRepository
	Bookmarks   *repositories.BookmarkRepository
	Tracker     *progress.Tracker
	Queue       Enqueuer
	Notifier    Notifier
	Logger      *log.Logger
	Import      shared.ImportConfig
}

// NewImportEngine creates an ImportEngine, filling unset options with defaults.
func NewImportEngine(opts ImportEngineOpts) *ImportEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(opts.Logger)
	}
	if opts.Import.CollectionBatchSize <= 0 {
		opts.Import.CollectionBatchSize = defaultCollectionBatchSize
	}
	if opts.Import.BookmarkChunkSize <= 0 {
		opts.Import.BookmarkChunkSize = defaultBookmarkChunkSize
	}
	if opts.Import.ValidationChunkSize <= 0 {
		opts.Import.ValidationChunkSize = defaultValidationChunkSize
	}

	return &ImportEngine{
		db:                  opts.DB,
		collections:         opts.Collections,
		bookmarks:           opts.Bookmarks,
		tracker:             opts.Tracker,
		queue:               opts.Queue,
		notifier:            opts.Notifier,
		logger:              opts.Logger,
		collectionBatchSize: opts.Import.CollectionBatchSize,
		bookmarkChunkSize:   opts.Import.BookmarkChunkSize,
		validationChunkSize: opts.Import.ValidationChunkSize,
	}
}

// Run imports one export file. Collections and bookmarks are written in a single
// transaction, so a failed import leaves no rows behind. On success every created bookmark
// has been counted into the progress tracker and enqueued for enrichment.
func (e *ImportEngine) Run(ctx context.Context, job ImportJob) (*ImportReport, error) {
	nodes, err := parser.Parse(job.HTML)
	if err != nil {
		return nil, err
	}

	folders := models.Folders(nodes)
	entries := models.Bookmarks(nodes)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}

	idMap, err := e.resolveCollections(ctx, tx, job.UserID, folders)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	written, skipped, err := e.writeBookmarks(ctx, tx, job.UserID, entries, idMap)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	report := &ImportReport{
		CollectionsCreated: len(idMap),
		BookmarksCreated:   len(written),
		InvalidSkipped:     skipped,
	}

	e.logger.Info("import written",
		"job", job.JobID,
		"collections", report.CollectionsCreated,
		"bookmarks", report.BookmarksCreated,
		"skipped", report.InvalidSkipped)

	if e.tracker != nil {
		if err := e.tracker.Initialize(job.JobID, len(written)); err != nil {
			return report, fmt.Errorf("failed to initialize progress: %w", err)
		}
	}

	if len(written) == 0 {
		e.notifier.ImportProgress(job.UserID, job.JobID, 100, StatusCompleted)
		if e.tracker != nil {
			if err := e.tracker.Cleanup(job.JobID); err != nil {
				e.logger.Error("failed to remove progress counters", "job", job.JobID, "error", err)
			}
		}
		return report, nil
	}

	e.notifier.ImportProgress(job.UserID, job.JobID, 0, StatusProcessing)

	if e.queue != nil {
		for i, b := range written {
			e.queue.Enqueue(EnrichmentJob{
				BookmarkID:   b.ID(),
				UserID:       job.UserID,
				URL:          b.URL(),
				CurrentIndex: i + 1,
				TotalCount:   len(written),
				ParentJobID:  job.JobID,
			})
		}
	}

	return report, nil
}
