package rate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/errgroup"
)

func newLimiter(t *testing.T, now time.Time) *Limiter {
	t.Helper()

	l, err := New(Config{})
	if err != nil {
		t.Fatalf("should be able to construct rate limiter: %s", err)
	}

	t.Cleanup(func() { l.Close() })

	l.now = func() time.Time { return now }

	return l
}

func Test_Rate(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 30, 0, time.UTC)

	t.Run("unlimited", func(t *testing.T) {
		l := newLimiter(t, now)

		for range 100 {
			if err := l.Check(context.Background(), "session", "detect", Limit{}); err != nil {
				t.Fatalf("should never exceed unlimited: %s", err)
			}
		}
	})

	t.Run("window", func(t *testing.T) {
		l := newLimiter(t, now)
		limit := Limit{Max: 3, Window: time.Minute}

		for i := range 3 {
			if err := l.Check(context.Background(), "session", "detect", limit); err != nil {
				t.Fatalf("should not exceed limit on check %d: %s", i+1, err)
			}
		}

		if err := l.Check(context.Background(), "session", "detect", limit); !errors.Is(err, ErrRateLimitExceeded) {
			t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
		}

		if err := l.Check(context.Background(), "other", "detect", limit); err != nil {
			t.Fatalf("expected other subjects to have their own count, got %v", err)
		}

		l.now = func() time.Time { return now.Add(time.Minute) }

		if err := l.Check(context.Background(), "session", "detect", limit); err != nil {
			t.Fatalf("expected a new window to reset the count, got %v", err)
		}
	})

	t.Run("concurrent", func(t *testing.T) {
		l := newLimiter(t, now)
		limit := Limit{Max: 10, Window: time.Hour}

		var allowed atomic.Int32
		var g errgroup.Group

		for range 50 {
			g.Go(func() error {
				err := l.Check(context.Background(), "session", "detect", limit)
				switch {
				case err == nil:
					allowed.Add(1)
					return nil

				case errors.Is(err, ErrRateLimitExceeded), errors.Is(err, badger.ErrConflict):
					return nil
				}

				return err
			})
		}

		if err := g.Wait(); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if n := allowed.Load(); n > 10 {
			t.Fatalf("expected at most 10 allowed, got %d", n)
		}
	})

	t.Run("conflict-retried", func(t *testing.T) {
		l := newLimiter(t, now)
		limit := Limit{Max: 1, Window: time.Hour}

		var calls atomic.Int32
		l.update = func(fn func(txn *badger.Txn) error) error {
			if calls.Add(1) <= 2 {
				return badger.ErrConflict
			}
			return l.db.Update(fn)
		}

		if err := l.Check(context.Background(), "session", "detect", limit); err != nil {
			t.Fatalf("expected the conflicts to be retried, got: %v", err)
		}

		if n := calls.Load(); n != 3 {
			t.Fatalf("expected 3 attempts, got %d", n)
		}

		if err := l.Check(context.Background(), "session", "detect", limit); !errors.Is(err, ErrRateLimitExceeded) {
			t.Fatalf("expected the retried check to be counted once, got %v", err)
		}
	})

	t.Run("conflict-exhausted", func(t *testing.T) {
		l := newLimiter(t, now)
		limit := Limit{Max: 1, Window: time.Hour}

		var calls atomic.Int32
		l.update = func(fn func(txn *badger.Txn) error) error {
			calls.Add(1)
			return badger.ErrConflict
		}

		err := l.Check(context.Background(), "session", "detect", limit)
		if !errors.Is(err, badger.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		if n := calls.Load(); n != conflictRetries+1 {
			t.Fatalf("expected %d attempts, got %d", conflictRetries+1, n)
		}
	})
}
