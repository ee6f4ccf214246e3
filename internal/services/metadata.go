package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/shared"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// PageMetadata is what enrichment learns about a bookmarked page. Any field may be empty
// when the page does not declare it; FaviconURL always carries at least the /favicon.ico
// fallback for a successfully fetched page.
type PageMetadata struct {
	Title       string
	Description string
	FaviconURL  string
}

// MetadataService fetches page metadata for a bookmark URL.
type MetadataService interface {
	FetchMetadata(ctx context.Context, rawURL string) (*PageMetadata, error)
}

// PageFetcher implements [MetadataService] with head-only streaming reads, manual redirect
// handling, per-host rate limiting, and a pluggable retry strategy.
type PageFetcher struct {
	client       *http.Client
	maxRedirects int
	timeout      time.Duration
	userAgent    string
	retry        RetryStrategy
	logger       *log.Logger

	perHost  rate.Limit
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// PageFetcherOpts contains configuration options for creating a PageFetcher.
type PageFetcherOpts struct {
	Client          *http.Client
	MaxRedirects    int
	Timeout         time.Duration
	UserAgent       string
	Retry           RetryStrategy
	RequestsPerHost float64
	Logger          *log.Logger
}

// NewPageFetcher creates a PageFetcher with the provided options, filling unset fields
// with defaults. The HTTP client's automatic redirect policy is disabled; redirects are
// followed by hand so the effective base URL stays observable.
func NewPageFetcher(opts PageFetcherOpts) *PageFetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	opts.Client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "linkhive/0.3"
	}
	if opts.Retry == nil {
		opts.Retry = NewBackoffRetry(3)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	perHost := rate.Inf
	if opts.RequestsPerHost > 0 {
		perHost = rate.Limit(opts.RequestsPerHost)
	}

	return &PageFetcher{
		client:       opts.Client,
		maxRedirects: opts.MaxRedirects,
		timeout:      opts.Timeout,
		userAgent:    opts.UserAgent,
		retry:        opts.Retry,
		logger:       opts.Logger,
		perHost:      perHost,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// FetchMetadata fetches the page at rawURL and extracts title, description, and the best
// favicon candidate. Retryable failures are attempted again per the configured strategy;
// on exhaustion the last error is returned.
func (f *PageFetcher) FetchMetadata(ctx context.Context, rawURL string) (*PageMetadata, error) {
	if err := models.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnsupportedScheme, err)
	}

	var meta *PageMetadata
	err := f.retry.Do(ctx, func() error {
		var err error
		meta, err = f.fetchOnce(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", shared.ErrFetchFailed, rawURL, err)
	}

	return meta, nil
}

// fetchOnce performs one fetch attempt, walking redirects by hand.
func (f *PageFetcher) fetchOnce(ctx context.Context, rawURL string) (*PageMetadata, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	for hop := 0; ; hop++ {
		if hop > f.maxRedirects {
			return nil, fmt.Errorf("%w: gave up after %d hops fetching %s", shared.ErrTooManyRedirects, f.maxRedirects, rawURL)
		}

		if err := f.limiter(current.Host).Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
		}

		next, meta, err := f.fetchHop(ctx, current)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			return meta, nil
		}

		f.logger.Debug("following redirect", "from", current.String(), "to", next.String())
		current = next
	}
}

// fetchHop performs a single GET. It returns either a redirect target or, on a terminal
// 2xx response, the parsed metadata. The response body is read only through the end of the
// document head; closing it aborts the rest of the transfer.
func (f *PageFetcher) fetchHop(ctx context.Context, current *url.URL) (*url.URL, *PageMetadata, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, current.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode <= 399:
		location := resp.Header.Get("Location")
		if location == "" {
			return nil, nil, &statusError{status: resp.StatusCode, url: current.String()}
		}
		next, err := current.Parse(location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve redirect location %q: %w", location, err)
		}
		return next, nil, nil

	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build charset decoder: %w", err)
		}

		doc, err := parseHead(body)
		if err != nil {
			return nil, nil, err
		}

		return nil, &PageMetadata{
			Title:       doc.Title,
			Description: doc.Description,
			FaviconURL:  selectFavicon(doc, current),
		}, nil

	default:
		return nil, nil, &statusError{status: resp.StatusCode, url: current.String()}
	}
}

// limiter returns the rate limiter for a host, creating it on first use.
func (f *PageFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.perHost, 1)
		f.limiters[host] = l
	}
	return l
}
