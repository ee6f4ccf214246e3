// Package progress tracks completion of bulk import jobs through expiring counters.
//
// Counters are modeled as an external key-value service with atomic increment and expiry;
// no process-local shared state is assumed, so any number of enrichment workers may call
// [Tracker.Increment] for the same job concurrently. Each import job owns two keys,
// "<jobID>:done" and "<jobID>:total", created together and removed together.
package progress

import (
	"fmt"
	"math"
	"time"
)

// Counters is an atomic key-value counter service with per-key expiry.
//
// Increment must be a single atomic operation from the caller's perspective, never a
// read-modify-write, and must refresh the key's expiry while the key is still alive.
type Counters interface {
	// Set creates or replaces a counter with the given value and time-to-live.
	Set(key string, value int, ttl time.Duration) error
	// Increment atomically adds one to a live counter, refreshes its expiry, and returns
	// the new value. Incrementing a missing or expired key is a no-op returning ok=false.
	Increment(key string, ttl time.Duration) (value int, ok bool, err error)
	// Get returns a live counter's value, with ok=false for missing or expired keys.
	Get(key string) (value int, ok bool, err error)
	// Delete removes the given keys, expired or not.
	Delete(keys ...string) error
}

// DefaultTTL is the counter expiry window used when the tracker is built with ttl <= 0.
const DefaultTTL = 10 * time.Minute

// Tracker derives 0-100 import percentages from a pair of counters per job.
type Tracker struct {
	counters Counters
	ttl      time.Duration
}

// NewTracker creates a Tracker over the given counter service.
func NewTracker(counters Counters, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{counters: counters, ttl: ttl}
}

func doneKey(jobID string) string  { return jobID + ":done" }
func totalKey(jobID string) string { return jobID + ":total" }

// Initialize creates the done/total counter pair for an import job.
func (t *Tracker) Initialize(jobID string, total int) error {
	if err := t.counters.Set(doneKey(jobID), 0, t.ttl); err != nil {
		return fmt.Errorf("failed to initialize done counter: %w", err)
	}
	if err := t.counters.Set(totalKey(jobID), total, t.ttl); err != nil {
		return fmt.Errorf("failed to initialize total counter: %w", err)
	}
	return nil
}

// Increment records one completed enrichment job. Incrementing after the counters have
// expired is not an error; late workers simply stop being counted.
func (t *Tracker) Increment(jobID string) error {
	if _, _, err := t.counters.Increment(doneKey(jobID), t.ttl); err != nil {
		return fmt.Errorf("failed to increment done counter: %w", err)
	}
	return nil
}

// Percentage returns min(round(done/total*100), 100), or 0 when the job's counters are
// absent or total is zero.
func (t *Tracker) Percentage(jobID string) (int, error) {
	total, ok, err := t.counters.Get(totalKey(jobID))
	if err != nil {
		return 0, fmt.Errorf("failed to read total counter: %w", err)
	}
	if !ok || total == 0 {
		return 0, nil
	}

	done, _, err := t.counters.Get(doneKey(jobID))
	if err != nil {
		return 0, fmt.Errorf("failed to read done counter: %w", err)
	}

	pct := int(math.Round(float64(done) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// Cleanup removes both counters for a finished import job.
func (t *Tracker) Cleanup(jobID string) error {
	if err := t.counters.Delete(doneKey(jobID), totalKey(jobID)); err != nil {
		return fmt.Errorf("failed to delete counters: %w", err)
	}
	return nil
}
