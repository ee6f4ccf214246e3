package tasks

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/parser"
	"github.com/desertmoss/linkhive/internal/progress"
	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/services"
	"github.com/desertmoss/linkhive/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultEnrichWorkers = 10
	defaultQueueDepth    = 256
)

// EnrichmentJob asks for one bookmark's metadata to be fetched and persisted. The index,
// count, and parent fields are set for bookmarks enqueued by an import and zero for
// standalone refreshes.
type EnrichmentJob struct {
	BookmarkID   string
	UserID       string
	URL          string
	OnlyFavicon  bool
	CurrentIndex int
	TotalCount   int
	ParentJobID  string
}

// FaviconStore persists a favicon fetched from a URL for a domain.
type FaviconStore interface {
	StoreFromURL(ctx context.Context, rawURL, domain string) (*models.Favicon, error)
}

// EnrichmentPool consumes [EnrichmentJob]s with a bounded number of concurrent workers.
// A job never fails the pool: fetch or store errors settle the bookmark with fallback
// metadata so no import is left waiting on an unreachable page.
type EnrichmentPool struct {
	metadata  services.MetadataService
	favicons  FaviconStore
	bookmarks *repositories.BookmarkRepository
	tracker   *progress.Tracker
	notifier  Notifier
	logger    *log.Logger

	workers int64
	jobs    chan EnrichmentJob
	group   *errgroup.Group
}

// EnrichmentPoolOpts contains configuration options for creating an EnrichmentPool.
type EnrichmentPoolOpts struct {
	Metadata  services.MetadataService
	Favicons  FaviconStore
	Bookmarks *repositories.BookmarkRepository
	Tracker   *progress.Tracker
	Notifier  Notifier
	Logger    *log.Logger
	Workers   int
}

// NewEnrichmentPool creates an EnrichmentPool, filling unset options with defaults.
func NewEnrichmentPool(opts EnrichmentPoolOpts) *EnrichmentPool {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(opts.Logger)
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultEnrichWorkers
	}

	return &EnrichmentPool{
		metadata:  opts.Metadata,
		favicons:  opts.Favicons,
		bookmarks: opts.Bookmarks,
		tracker:   opts.Tracker,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		workers:   int64(opts.Workers),
		jobs:      make(chan EnrichmentJob, defaultQueueDepth),
	}
}

// Start launches the dispatcher. Jobs enqueued after Start are processed by at most the
// configured number of workers at a time. Call [EnrichmentPool.Close] to drain and stop.
func (p *EnrichmentPool) Start(ctx context.Context) {
	sem := semaphore.NewWeighted(p.workers)
	p.group, ctx = errgroup.WithContext(ctx)

	p.group.Go(func() error {
		for job := range p.jobs {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			job := job
			p.group.Go(func() error {
				defer sem.Release(1)
				p.process(ctx, job)
				return nil
			})
		}
		return nil
	})
}

// Enqueue submits a job for processing. Blocks when the queue is full.
func (p *EnrichmentPool) Enqueue(job EnrichmentJob) {
	p.jobs <- job
}

// Close stops accepting jobs, waits for in-flight work, and returns the first dispatcher
// error (cancellation is the only source; job failures settle in place).
func (p *EnrichmentPool) Close() error {
	close(p.jobs)
	return p.group.Wait()
}

// process runs one enrichment to completion. Terminal failures still settle the bookmark:
// metadata stays whatever the import recorded, the favicon stays empty, and the pending
// flag clears so the bookmark is never retried forever.
func (p *EnrichmentPool) process(ctx context.Context, job EnrichmentJob) {
	title, faviconID, faviconURL := p.enrich(ctx, job)

	if err := p.bookmarks.SettleMetadata(job.BookmarkID, title, faviconID, faviconURL); err != nil {
		p.logger.Error("failed to settle bookmark", "bookmark", job.BookmarkID, "error", err)
		return
	}

	p.notifier.BookmarkUpdated(job.UserID, job.BookmarkID, BookmarkUpdate{
		Title:      title,
		FaviconURL: faviconURL,
		Settled:    true,
	})

	if job.ParentJobID == "" || p.tracker == nil {
		return
	}

	if err := p.tracker.Increment(job.ParentJobID); err != nil {
		p.logger.Error("failed to increment progress", "job", job.ParentJobID, "error", err)
		return
	}

	pct, err := p.tracker.Percentage(job.ParentJobID)
	if err != nil {
		p.logger.Error("failed to read progress", "job", job.ParentJobID, "error", err)
		return
	}

	status := StatusProcessing
	if pct >= 100 {
		status = StatusCompleted
	}
	p.notifier.ImportProgress(job.UserID, job.ParentJobID, pct, status)

	// Increment is atomic, so exactly one worker observes 100 and removes the counters.
	if status == StatusCompleted {
		if err := p.tracker.Cleanup(job.ParentJobID); err != nil {
			p.logger.Error("failed to remove progress counters", "job", job.ParentJobID, "error", err)
		}
	}
}

// enrich fetches metadata and stores the favicon, returning the settled field values.
func (p *EnrichmentPool) enrich(ctx context.Context, job EnrichmentJob) (title string, faviconID, faviconURL *string) {
	title = p.currentTitle(job.BookmarkID)

	meta, err := p.metadata.FetchMetadata(ctx, job.URL)
	if err != nil {
		p.logger.Warn("metadata fetch failed", "bookmark", job.BookmarkID, "url", job.URL, "error", err)
		return title, nil, nil
	}

	if !job.OnlyFavicon && meta.Title != "" {
		title = meta.Title
	}

	if meta.FaviconURL == "" || p.favicons == nil {
		return title, nil, nil
	}

	favicon, err := p.favicons.StoreFromURL(ctx, meta.FaviconURL, hostOf(job.URL))
	if err != nil {
		p.logger.Warn("favicon store failed", "bookmark", job.BookmarkID, "url", meta.FaviconURL, "error", err)
		return title, nil, nil
	}

	id := favicon.ID()
	cdn := favicon.URL()
	return title, &id, &cdn
}

// currentTitle reads the title the import recorded, falling back to the placeholder when
// the bookmark row cannot be read or never had one.
func (p *EnrichmentPool) currentTitle(bookmarkID string) string {
	b, err := p.bookmarks.Get(bookmarkID)
	if err != nil || b.Title() == "" {
		return parser.UntitledBookmark
	}
	return b.Title()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
