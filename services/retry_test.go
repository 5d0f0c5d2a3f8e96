package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fastRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Millisecond,
	MinDelay:    time.Millisecond,
	MaxDelay:    10 * time.Millisecond,
}

func TestWithRetry_Success(t *testing.T) {
	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_EventualSuccess(t *testing.T) {
	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		callCount++
		if callCount < 3 {
			return NewStockDataError(KindTimeout, "op", "src", errors.New("timed out"))
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	callCount := 0
	transient := NewStockDataError(KindServiceUnavailable, "op", "src", errors.New("down"))
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		callCount++
		return transient
	})

	if !errors.Is(err, transient) {
		t.Errorf("expected last error returned, got: %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	tests := []struct {
		name string
		kind ErrorKind
	}{
		{"invalid symbol", KindInvalidSymbol},
		{"data not found", KindDataNotFound},
		{"rate limited", KindRateLimited},
		{"internal", KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			callCount := 0
			err := WithRetry(context.Background(), fastRetryConfig, func() error {
				callCount++
				return NewStockDataError(tt.kind, "op", "src", nil)
			})

			if err == nil {
				t.Error("expected error, got nil")
			}
			if callCount != 1 {
				t.Errorf("expected 1 call for non-retryable error, got %d", callCount)
			}
		})
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		callCount++
		if callCount == 1 {
			cancel()
		}
		return NewStockDataError(KindTimeout, "op", "src", errors.New("timed out"))
	})

	if err == nil {
		t.Error("expected error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got: %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

func TestWithRetry_DelayClamping(t *testing.T) {
	config := RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		MinDelay:    5 * time.Millisecond,
		MaxDelay:    8 * time.Millisecond,
	}

	start := time.Now()
	WithRetry(context.Background(), config, func() error {
		return NewStockDataError(KindTimeout, "op", "src", errors.New("timed out"))
	})
	elapsed := time.Since(start)

	// Delays: clamp(1)=5, clamp(2)=5, clamp(4)=5 → at least 15ms total
	if elapsed < 15*time.Millisecond {
		t.Errorf("expected at least 15ms of backoff, got %v", elapsed)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("backoff too long, got %v", elapsed)
	}
}
