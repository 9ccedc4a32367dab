package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds how often a failed store operation is attempted again.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	RetryIf      func(error) bool
}

// DefaultRetryPolicy returns the policy used for registry mutations: local
// file operations, so short delays.
func DefaultRetryPolicy(retries int) RetryPolicy {
	if retries < 0 {
		retries = 0
	}
	return RetryPolicy{
		MaxAttempts:  retries + 1,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       true,
		RetryIf:      IsRetryable,
	}
}

// retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. onRetry, when set, is called before each wait.
func retry(ctx context.Context, policy RetryPolicy, onRetry func(attempt int, err error), fn func() error) error {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := policy.InitialDelay

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry canceled: %w", ctx.Err())
			case <-timer.C:
			}

			delay = time.Duration(float64(delay) * policy.Multiplier)
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
			if policy.Jitter && delay > 0 {
				delay += time.Duration(rand.Int64N(int64(delay)/10 + 1))
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if policy.RetryIf != nil && !policy.RetryIf(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
