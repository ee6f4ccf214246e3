package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastRetry(attempts int) *BackoffRetry {
	return &BackoffRetry{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &statusError{status: 503, url: "https://x"}, true},
		{"client error", &statusError{status: 404, url: "https://x"}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"unexpected eof", errors.New("unexpected EOF"), true},
		{"plain failure", errors.New("no <head> in response"), false},
		{"wrapped status", fmt.Errorf("request failed: %w", &statusError{status: 500, url: "https://x"}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffRetry(t *testing.T) {
	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		calls := 0
		err := fastRetry(3).Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &statusError{status: 502, url: "https://x"}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("BoundedAttempts", func(t *testing.T) {
		calls := 0
		failure := &statusError{status: 500, url: "https://x"}
		err := fastRetry(3).Do(context.Background(), func() error {
			calls++
			return failure
		})
		if !errors.Is(err, failure) {
			t.Errorf("expected last error surfaced, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", calls)
		}
	})

	t.Run("PermanentFailsImmediately", func(t *testing.T) {
		calls := 0
		err := fastRetry(5).Do(context.Background(), func() error {
			calls++
			return &statusError{status: 404, url: "https://x"}
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("non-retryable error must not be retried, got %d attempts", calls)
		}
	})

	t.Run("ContextCancellationStops", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fastRetry(5).Do(ctx, func() error {
			return &statusError{status: 500, url: "https://x"}
		})
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	})
}
