// Package store implements the content-addressed favicon store.
//
// Assets are deduplicated on two axes: a content hash shared globally (identical bytes
// fetched from different domains produce one row and one stored object) and a domain
// (a domain whose favicon changed updates its existing row in place instead of growing a
// duplicate). All lookup-then-write sequences for a domain run under a keyed lock so that
// concurrent enrichment workers on the same domain cannot double-upload. The package owns
// favicon rows exclusively; nothing else writes them.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertmoss/linkhive/internal/models"
	"github.com/desertmoss/linkhive/internal/repositories"
	"github.com/desertmoss/linkhive/internal/shared"
	"github.com/hashicorp/go-retryablehttp"
)

// maxIconBytes bounds favicon downloads; anything larger is not a favicon.
const maxIconBytes = 1 << 20

// DefaultLease is the lock lease used when the store is built with lease <= 0.
const DefaultLease = 30 * time.Second

// Store downloads favicon assets and persists them content-addressed.
type Store struct {
	favicons *repositories.FaviconRepository
	storage  ObjectStorage
	locker   Locker
	client   *retryablehttp.Client
	logger   *log.Logger
	lease    time.Duration
}

// StoreOpts contains configuration options for creating a Store.
type StoreOpts struct {
	Favicons *repositories.FaviconRepository
	Storage  ObjectStorage
	Locker   Locker
	Client   *retryablehttp.Client
	Logger   *log.Logger
	Lease    time.Duration
}

// NewStore creates a Store with the provided options, filling unset fields with defaults.
func NewStore(opts StoreOpts) *Store {
	if opts.Client == nil {
		opts.Client = retryablehttp.NewClient()
		opts.Client.RetryMax = 2
		opts.Client.Logger = nil
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Lease <= 0 {
		opts.Lease = DefaultLease
	}

	return &Store{
		favicons: opts.Favicons,
		storage:  opts.Storage,
		locker:   opts.Locker,
		client:   opts.Client,
		logger:   opts.Logger,
		lease:    opts.Lease,
	}
}

// StoreFromURL downloads the favicon at rawURL and returns the favicon row for domain,
// reusing or updating existing rows per the dedup rules. Only a genuinely new content hash
// produces an object-storage upload.
func (s *Store) StoreFromURL(ctx context.Context, rawURL, domain string) (*models.Favicon, error) {
	data, contentType, err := s.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if isSVG(contentType) {
		sanitized, err := SanitizeSVG(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrUnsupportedContent, err)
		}
		data, err = RasterizeSVG(sanitized)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrUnsupportedContent, err)
		}
		contentType = "image/x-icon"
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	token, err := s.locker.Acquire(ctx, lockKey(domain), s.lease)
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(token)

	// Global content dedup: identical bytes already stored under any domain win outright.
	if existing, err := s.favicons.GetByHash(hash); err != nil {
		return nil, err
	} else if existing != nil {
		s.logger.Debug("favicon hash already stored", "domain", domain, "hash", hash)
		return existing, nil
	}

	// Domain dedup: a changed favicon rewrites the domain's row rather than inserting.
	if existing, err := s.favicons.GetByDomain(domain); err != nil {
		return nil, err
	} else if existing != nil {
		return s.replaceContent(ctx, existing, data, hash, contentType, domain)
	}

	obj, err := s.upload(ctx, data, hash, contentType)
	if err != nil {
		return nil, err
	}

	favicon := models.NewFavicon(hash, domain, obj.URL, obj.Key)
	if err := s.favicons.Create(favicon); err != nil {
		return nil, err
	}

	s.logger.Info("stored new favicon", "domain", domain, "key", obj.Key)
	return favicon, nil
}

// replaceContent uploads new bytes for a domain that already has a favicon row and points
// the row at them. The row is re-locked under its own recorded domain, which can differ
// from the requested one when a domain alias maps onto an existing row.
func (s *Store) replaceContent(ctx context.Context, existing *models.Favicon, data []byte, hash, contentType, requested string) (*models.Favicon, error) {
	if existing.Domain() != requested {
		token, err := s.locker.Acquire(ctx, lockKey(existing.Domain()), s.lease)
		if err != nil {
			return nil, err
		}
		defer s.locker.Release(token)
	}

	obj, err := s.upload(ctx, data, hash, contentType)
	if err != nil {
		return nil, err
	}

	existing.SetContent(hash, obj.URL, obj.Key)
	if err := s.favicons.Update(existing); err != nil {
		return nil, err
	}

	s.logger.Info("replaced favicon content", "domain", existing.Domain(), "key", obj.Key)
	return existing, nil
}

// download fetches the asset, enforcing an image content type and a size cap.
func (s *Store) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download favicon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: status %d downloading %s", shared.ErrFetchFailed, resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: %q is not an image", shared.ErrUnsupportedContent, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read favicon body: %w", err)
	}
	if len(data) > maxIconBytes {
		return nil, "", fmt.Errorf("%w: favicon exceeds %d bytes", shared.ErrUnsupportedContent, maxIconBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty favicon body", shared.ErrUnsupportedContent)
	}

	return data, contentType, nil
}

// upload stores the asset under a hash-derived key.
func (s *Store) upload(ctx context.Context, data []byte, hash, contentType string) (*StoredObject, error) {
	key := "favicons/" + hash + extensionFor(contentType)
	obj, err := s.storage.Upload(ctx, data, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload favicon: %w", err)
	}
	return obj, nil
}

func lockKey(domain string) string {
	return "favicon:" + domain
}

func isSVG(contentType string) bool {
	return strings.Contains(contentType, "svg")
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".ico"
	}
}
