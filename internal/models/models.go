package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/desertmoss/linkhive/internal/shared"
)

// Model defines the base interface for all persistent models in the bookmark service.
// Implementations include Collection, Bookmark, and Favicon.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// ValidateURL checks that raw parses as an absolute http or https URL with a host.
// Bookmark export files regularly contain javascript:, place:, and file: entries; those are rejected here.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: unparsable URL %q: %v", shared.ErrInvalidURL, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", shared.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", shared.ErrInvalidURL, raw)
	}
	return nil
}
