package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/desertmoss/linkhive/internal/shared"
)

// Locker is a keyed mutual-exclusion service with leases. Acquiring an already-held key
// fails until the holder releases it or the lease lapses; callers retry with jitter a small
// number of times before giving up. Any lock server with acquire/release semantics can sit
// behind this interface.
type Locker interface {
	// Acquire takes the lock for key with the given lease, returning an opaque token used
	// to release it. Returns [shared.ErrLockNotAcquired] when the key stays contended.
	Acquire(ctx context.Context, key string, lease time.Duration) (token string, err error)
	// Release frees the lock identified by token. Releasing an expired or stolen token is
	// a no-op.
	Release(token string) error
}

const (
	lockAttempts  = 5
	lockBaseDelay = 50 * time.Millisecond
)

// jitteredDelay returns the backoff delay before attempt n, with up to 50% random jitter.
func jitteredDelay(attempt int) time.Duration {
	base := lockBaseDelay << attempt
	return base + time.Duration(rand.Int63n(int64(base/2)+1))
}

// SQLLocker implements [Locker] over the domain_locks table. A lock is one row; stealing
// an expired row and inserting a fresh one are the same upsert, so acquisition is a single
// statement.
type SQLLocker struct {
	db *sql.DB
}

// NewSQLLocker creates a SQLLocker over the given database connection.
func NewSQLLocker(db *sql.DB) *SQLLocker {
	return &SQLLocker{db: db}
}

// Acquire takes the lock for key, retrying contention with jitter before failing.
func (l *SQLLocker) Acquire(ctx context.Context, key string, lease time.Duration) (string, error) {
	token := shared.GenerateID()

	query := `
		INSERT INTO domain_locks (key, token, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at
		WHERE domain_locks.expires_at <= ?
	`

	for attempt := 0; attempt < lockAttempts; attempt++ {
		now := time.Now()
		result, err := l.db.Exec(query, key, token, now.Add(lease), now)
		if err != nil {
			return "", fmt.Errorf("failed to acquire lock: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows > 0 {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("lock wait interrupted: %w", ctx.Err())
		case <-time.After(jitteredDelay(attempt)):
		}
	}

	return "", fmt.Errorf("%w: key %q", shared.ErrLockNotAcquired, key)
}

// Release frees the lock identified by token.
func (l *SQLLocker) Release(token string) error {
	if _, err := l.db.Exec("DELETE FROM domain_locks WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// MemoryLocker implements [Locker] in process memory, for tests and single-process runs.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryLock)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, lease time.Duration) (string, error) {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		if token, ok := l.tryAcquire(key, lease); ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("lock wait interrupted: %w", ctx.Err())
		case <-time.After(jitteredDelay(attempt)):
		}
	}

	return "", fmt.Errorf("%w: key %q", shared.ErrLockNotAcquired, key)
}

func (l *MemoryLocker) tryAcquire(key string, lease time.Duration) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && time.Now().Before(held.expiresAt) {
		return "", false
	}

	token := shared.GenerateID()
	l.locks[key] = memoryLock{token: token, expiresAt: time.Now().Add(lease)}
	return token, true
}

func (l *MemoryLocker) Release(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, held := range l.locks {
		if held.token == token {
			delete(l.locks, key)
			return nil
		}
	}
	return nil
}
