// Package retry provides a data-driven retry policy for transient failures.
//
// A Policy carries the schedule (attempt cap, backoff floor and ceiling); the
// retryable predicate and the operation are supplied per call, so the policy
// can be tested independently of what it wraps.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay before the second attempt
	MaxDelay    time.Duration // Backoff ceiling
}

// DefaultPolicy returns sensible defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Do runs op, retrying per the policy while retryable(err) is true.
// A nil retryable treats every error as retryable. The delay between
// attempts doubles from BaseDelay up to MaxDelay, with jitter in the
// range backoff*(0.5 to 1.5). Returns nil on the first success, the
// context error if ctx ends first, and the last operation error wrapped
// once attempts are exhausted.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	backoff := p.BaseDelay
	if backoff <= 0 {
		backoff = time.Millisecond
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
			if p.MaxDelay > 0 && backoff > p.MaxDelay {
				backoff = p.MaxDelay
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
