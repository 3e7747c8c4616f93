// Package rate provides fixed window rate limiting backed by an embedded
// badger database.
package rate

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sethvargo/go-retry"
)

// Transactions touching the same counter conflict under concurrent checks.
const (
	conflictRetries = 4
	conflictDelay   = 5 * time.Millisecond
)

// ErrRateLimitExceeded is returned when the rate limit has been exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Limit allows Max actions per Window. A Max of 0 or less is unlimited.
type Limit struct {
	Max    int
	Window time.Duration
}

// Unlimited reports if the limit never rejects.
func (l Limit) Unlimited() bool {
	return l.Max <= 0 || l.Window <= 0
}

// Config holds the configuration for the rate limiter. An empty DBPath keeps
// the counters in memory.
type Config struct {
	DBPath string
}

// Limiter counts actions per subject inside fixed time windows.
type Limiter struct {
	db     *badger.DB
	now    func() time.Time
	update func(fn func(txn *badger.Txn) error) error
}

// New creates a new rate limiter with the specified configuration.
func New(cfg Config) (*Limiter, error) {
	opts := badger.DefaultOptions(cfg.DBPath)
	if cfg.DBPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}

	l := Limiter{
		db:     db,
		now:    time.Now,
		update: db.Update,
	}

	return &l, nil
}

// Close closes the underlying database.
func (l *Limiter) Close() error {
	return l.db.Close()
}

// Check counts one action for the subject and returns ErrRateLimitExceeded
// once the window's allowance is used up. Rejected actions are not counted.
func (l *Limiter) Check(ctx context.Context, subject string, action string, limit Limit) error {
	if limit.Unlimited() {
		return nil
	}

	now := l.now().UTC()
	start := now.Truncate(limit.Window)
	key := fmt.Appendf(nil, "rate:%s:%s:%d", subject, action, start.Unix())
	ttl := start.Add(limit.Window).Sub(now)

	f := func(txn *badger.Txn) error {
		var count uint64

		item, err := txn.Get(key)
		switch {
		case err == nil:
			err := item.Value(func(val []byte) error {
				count = binary.BigEndian.Uint64(val)
				return nil
			})

			if err != nil {
				return err
			}

		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if count >= uint64(limit.Max) {
			return ErrRateLimitExceeded
		}

		val := binary.BigEndian.AppendUint64(nil, count+1)

		return txn.SetEntry(badger.NewEntry(key, val).WithTTL(ttl))
	}

	backoff := retry.WithMaxRetries(conflictRetries, retry.WithJitter(conflictDelay, retry.NewConstant(conflictDelay)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := l.update(f)
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}

		return err
	})

	switch {
	case err == nil:
		return nil

	case errors.Is(err, ErrRateLimitExceeded):
		return err
	}

	return fmt.Errorf("check: %w", err)
}
