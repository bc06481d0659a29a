package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a key has no entry.
	ErrNotFound = errors.New("cache: not found")

	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("cache: backend unreachable")
)

// Backoff retries an operation with exponentially growing waits.
type Backoff struct {
	Attempts int           // total calls, including the first
	Delay    time.Duration // wait after the first failure
	Max      time.Duration // cap on a single wait; 0 means no cap
}

// DefaultBackoff is the policy remote backends connect with.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 4 * time.Second}

// Do calls fn until it succeeds, fails with an error not marked by
// [Retryable], or runs out of attempts. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
}

type retryable struct{ err error }

func (e retryable) Error() string { return e.err.Error() }
func (e retryable) Unwrap() error { return e.err }

// Retryable marks err as transient so [Backoff.Do] tries again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err: err}
}

// IsRetryable reports whether err was marked by [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// ping verifies a backend connection, retrying while the backend is
// unreachable and the context is live.
func ping(ctx context.Context, backend string, fn func(context.Context) error) error {
	return DefaultBackoff.Do(ctx, func() error {
		err := fn(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}
		return Retryable(fmt.Errorf("%w: %s: %v", ErrNetwork, backend, err))
	})
}
