package services

import (
	"context"
	"fmt"
	"time"

	"stockscope/observability"
)

// RetryConfig controls the exponential backoff retry wrapper.
type RetryConfig struct {
	MaxAttempts int           // total tries, including the first
	BaseDelay   time.Duration // delay before the first retry
	MinDelay    time.Duration // lower clamp on computed delays
	MaxDelay    time.Duration // upper clamp on computed delays
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MinDelay:    1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// WithRetry runs fn up to config.MaxAttempts times, sleeping
// BaseDelay*2^n (clamped to [MinDelay, MaxDelay]) between attempts.
// Only transient errors are retried; anything else propagates
// immediately. The last error is returned when all attempts fail.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.BaseDelay << (attempt - 1)
			if delay < config.MinDelay {
				delay = config.MinDelay
			}
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if attempt < config.MaxAttempts-1 {
			observability.Warn("transient error, retrying",
				"attempt", attempt+1,
				"max_attempts", config.MaxAttempts,
				"error", err)
		}
	}

	return lastErr
}
