package domain

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a single strategy or acquisition method is
// retried. Delays are fixed, not exponential: the pipeline favors fast
// rotation to the next method over aggressive single-method persistence.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Run invokes fn up to MaxAttempts times, sleeping Delay between
// attempts. Terminal errors and context cancellation return immediately
// without consuming remaining attempts.
func (p RetryPolicy) Run(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return ErrCancelled
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if IsTerminal(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ErrCancelled
		}

		if attempt < attempts && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ErrCancelled
			}
		}
	}
	return lastErr
}
