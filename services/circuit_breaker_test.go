package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRegistry() *CircuitBreakerRegistry {
	return NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	})
}

func TestCircuitBreakerRegistry_Execute_Success(t *testing.T) {
	registry := newTestRegistry()

	result, err := registry.Execute(context.Background(), "test-provider", func() (any, error) {
		return "ok", nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %v", result)
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	registry := newTestRegistry()
	failing := errors.New("provider down")

	// Five consecutive failures push the breaker past the 50% threshold
	for i := 0; i < 5; i++ {
		registry.Execute(context.Background(), "flaky", func() (any, error) {
			return nil, failing
		})
	}

	callCount := 0
	_, err := registry.Execute(context.Background(), "flaky", func() (any, error) {
		callCount++
		return "ok", nil
	})

	if err == nil {
		t.Fatal("expected error from open breaker, got nil")
	}
	if KindOf(err) != KindServiceUnavailable {
		t.Errorf("expected service_unavailable, got %v", KindOf(err))
	}
	if callCount != 0 {
		t.Errorf("expected function not called while breaker open, got %d calls", callCount)
	}
}

func TestCircuitBreakerRegistry_StaysClosedBelowThreshold(t *testing.T) {
	registry := newTestRegistry()

	// Four failures is below the minimum request count to trip
	for i := 0; i < 4; i++ {
		registry.Execute(context.Background(), "mostly-ok", func() (any, error) {
			return nil, errors.New("transient")
		})
	}

	result, err := registry.Execute(context.Background(), "mostly-ok", func() (any, error) {
		return "ok", nil
	})
	if err != nil {
		t.Errorf("expected breaker still closed, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %v", result)
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := newTestRegistry()

	registry.Execute(context.Background(), "svc-a", func() (any, error) { return nil, nil })
	registry.Execute(context.Background(), "svc-b", func() (any, error) { return nil, errors.New("fail") })

	status := registry.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 breakers, got %d", len(status))
	}
	if status["svc-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for svc-a, got %d", status["svc-a"].TotalSuccesses)
	}
	if status["svc-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for svc-b, got %d", status["svc-b"].TotalFailures)
	}
	if status["svc-a"].State != "closed" {
		t.Errorf("expected closed state, got %s", status["svc-a"].State)
	}
}

func TestWithCircuitBreaker_TypedResult(t *testing.T) {
	SetGlobalRegistry(newTestRegistry())

	result, err := WithCircuitBreaker(context.Background(), "typed", func() (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result != 7 {
		t.Errorf("expected 7, got %d", result)
	}
}

func TestCircuitBreakerRegistry_ContextCancelled(t *testing.T) {
	registry := newTestRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.Execute(ctx, "cancelled", func() (any, error) {
		t.Error("function should not run after cancellation")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
