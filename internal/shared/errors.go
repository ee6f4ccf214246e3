package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Import errors
	ErrMaliciousContent  = fmt.Errorf("malicious content detected")
	ErrCircularReference = fmt.Errorf("circular or orphaned folder reference")
	ErrPartialWrite      = fmt.Errorf("partial bookmark write")
	ErrInvalidURL        = fmt.Errorf("invalid bookmark URL")

	// Fetch and enrichment errors
	ErrTooManyRedirects   = fmt.Errorf("too many redirects")
	ErrUnsupportedScheme  = fmt.Errorf("unsupported URL scheme")
	ErrUnsupportedContent = fmt.Errorf("unsupported content type")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrFetchFailed        = fmt.Errorf("fetch failed")

	// Store and counter errors
	ErrLockNotAcquired = fmt.Errorf("lock not acquired")
	ErrCounterMissing  = fmt.Errorf("progress counter not found")

	// Lookup errors
	ErrNotFound = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
