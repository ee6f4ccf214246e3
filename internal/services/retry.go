package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryStrategy decides whether and how a failed fetch operation is attempted again.
type RetryStrategy interface {
	// Do runs op, retrying retryable failures until they succeed or the strategy gives up.
	// The last error is returned when attempts are exhausted.
	Do(ctx context.Context, op func() error) error
}

// statusError carries a non-2xx HTTP response through the retry classifier.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

// IsRetryable reports whether err is a transient fetch failure worth another attempt:
// timeouts, connection-level network errors, and 5xx-class responses. Everything else
// (4xx, bad schemes, malformed content) is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500 && se.status <= 599
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, transient := range []string{
		"connection reset",
		"connection refused",
		"broken pipe",
		"unexpected eof",
		"no such host",
		"i/o timeout",
	} {
		if strings.Contains(errStr, transient) {
			return true
		}
	}

	return false
}

// BackoffRetry implements [RetryStrategy] with capped exponential backoff and a bounded
// attempt count.
type BackoffRetry struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewBackoffRetry creates a BackoffRetry with the given attempt bound and default intervals.
func NewBackoffRetry(maxAttempts int) *BackoffRetry {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &BackoffRetry{
		MaxAttempts:     maxAttempts,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
	}
}

// newBackoff returns a fresh policy per call; BackOff implementations are stateful.
func (r *BackoffRetry) newBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.InitialInterval
	bo.MaxInterval = r.MaxInterval
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, uint64(r.MaxAttempts-1))
}

// Do runs op with exponential backoff, marking non-retryable failures permanent so they
// surface immediately.
func (r *BackoffRetry) Do(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(r.newBackoff(), ctx))
}
