package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertmoss/linkhive/internal/progress"
	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/services"
	"github.com/desertmoss/linkhive/internal/shared"
	"github.com/desertmoss/linkhive/internal/store"
	"github.com/desertmoss/linkhive/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, enrichCommand, progressCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reloads configuration from the given path, falling back to the runner's
// current config when the file is absent or unreadable.
func (r *Runner) loadConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using current settings", "path", path, "error", err)
		return r.config
	}
	return config
}

// openDatabase opens and configures the configured SQLite database.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// buildTracker wires the SQLite-backed progress tracker.
func (r *Runner) buildTracker(db *sql.DB, config *shared.Config) *progress.Tracker {
	ttl := progress.DefaultTTL
	if config.Enrich.ProgressTTLMinutes > 0 {
		ttl = time.Duration(config.Enrich.ProgressTTLMinutes) * time.Minute
	}
	return progress.NewTracker(progress.NewSQLCounters(db), ttl)
}

// buildPool wires the enrichment pipeline: page fetcher, favicon store, and worker pool.
func (r *Runner) buildPool(db *sql.DB, config *shared.Config, notifier tasks.Notifier, tracker *progress.Tracker) *tasks.EnrichmentPool {
	fetcher := services.NewPageFetcher(services.PageFetcherOpts{
		Client:          r.httpClient,
		MaxRedirects:    config.Fetch.MaxRedirects,
		Timeout:         time.Duration(config.Fetch.TimeoutSeconds) * time.Second,
		UserAgent:       config.Fetch.UserAgent,
		Retry:           services.NewBackoffRetry(config.Fetch.MaxAttempts),
		RequestsPerHost: config.Fetch.RequestsPerHost,
		Logger:          shared.WithLogger(r.logger, "component", "fetch"),
	})

	faviconStore := store.NewStore(store.StoreOpts{
		Favicons: repositories.NewFaviconRepository(db),
		Storage:  store.NewFSStorage(config.Storage.Root, config.Storage.CDNBaseURL),
		Locker:   store.NewSQLLocker(db),
		Logger:   shared.WithLogger(r.logger, "component", "favicons"),
	})

	return tasks.NewEnrichmentPool(tasks.EnrichmentPoolOpts{
		Metadata:  fetcher,
		Favicons:  faviconStore,
		Bookmarks: repositories.NewBookmarkRepository(db),
		Tracker:   tracker,
		Notifier:  notifier,
		Logger:    shared.WithLogger(r.logger, "component", "enrich"),
		Workers:   config.Enrich.Workers,
	})
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
