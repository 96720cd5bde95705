// Package retry implements a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt has failed.
var ErrExhausted = errors.New("all retry attempts exhausted")

// Policy describes a bounded retry schedule. The wait before attempt n+1 is
// BaseDelay * 2^n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep overrides the wait between attempts. Nil means a real
	// timer-based sleep that honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Backoff returns the wait after attempt (0-based) has failed.
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * (1 << attempt)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn until it succeeds or the attempt budget runs out, sleeping
// the backoff schedule between failed attempts. Every error from fn is
// swallowed and counted as a failed attempt; only the last one is carried
// in the final ErrExhausted error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if p.MaxAttempts <= 0 {
		return zero, fmt.Errorf("retry: invalid max attempts %d", p.MaxAttempts)
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt < p.MaxAttempts-1 {
			if err := p.sleep(ctx, p.Backoff(attempt)); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.MaxAttempts, lastErr)
}
