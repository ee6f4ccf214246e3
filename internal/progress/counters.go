package progress

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// SQLCounters implements [Counters] over the progress_counters table.
//
// Increments run as a single UPDATE guarded by the expiry timestamp, then read the value
// back inside the same transaction, so concurrent workers never observe torn updates.
type SQLCounters struct {
	db *sql.DB
}

// NewSQLCounters creates a SQLCounters over the given database connection.
func NewSQLCounters(db *sql.DB) *SQLCounters {
	return &SQLCounters{db: db}
}

// Set creates or replaces a counter with the given value and time-to-live.
func (c *SQLCounters) Set(key string, value int, ttl time.Duration) error {
	query := `
		INSERT INTO progress_counters (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`

	if _, err := c.db.Exec(query, key, value, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to set counter: %w", err)
	}
	return nil
}

// Increment atomically adds one to a live counter and refreshes its expiry.
func (c *SQLCounters) Increment(key string, ttl time.Duration) (int, bool, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.Exec(
		"UPDATE progress_counters SET value = value + 1, expires_at = ? WHERE key = ? AND expires_at > ?",
		now.Add(ttl), key, now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment counter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return 0, false, nil
	}

	var value int
	if err := tx.QueryRow("SELECT value FROM progress_counters WHERE key = ?", key).Scan(&value); err != nil {
		return 0, false, fmt.Errorf("failed to read counter value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit increment: %w", err)
	}

	return value, true, nil
}

// Get returns a live counter's value.
func (c *SQLCounters) Get(key string) (int, bool, error) {
	var value int
	err := c.db.QueryRow(
		"SELECT value FROM progress_counters WHERE key = ? AND expires_at > ?",
		key, time.Now(),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, true, nil
}

// Delete removes the given keys.
func (c *SQLCounters) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := c.db.Exec("DELETE FROM progress_counters WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete counter: %w", err)
		}
	}
	return nil
}

// MemoryCounters implements [Counters] in process memory. Used in tests and by the CLI
// when no shared counter backend is configured.
type MemoryCounters struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     int
	expiresAt time.Time
}

// NewMemoryCounters creates an empty MemoryCounters.
func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCounters) Set(key string, value int, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryCounters) Increment(key string, ttl time.Duration) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false, nil
	}

	entry.value++
	entry.expiresAt = time.Now().Add(ttl)
	c.entries[key] = entry
	return entry.value, true, nil
}

func (c *MemoryCounters) Get(key string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCounters) Delete(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
