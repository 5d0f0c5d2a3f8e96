package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"stockscope/observability"
)

// Source is one named provider in a fallback chain.
type Source[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// ExecuteWithFallback tries each source in order and returns the first
// usable result together with the name of the source that produced it.
// A source that returns a nil error but no value (nil pointer, empty
// string) counts as a failed attempt and the chain moves on. When every
// source fails, the returned error joins the individual failure
// messages so the caller can see the full chain.
func ExecuteWithFallback[T any](ctx context.Context, op string, sources []Source[T]) (T, string, error) {
	var zero T
	if len(sources) == 0 {
		return zero, "", NewStockDataError(KindInternal, op, "none", errors.New("no sources configured"))
	}

	var failures []string
	for _, src := range sources {
		if ctx.Err() != nil {
			return zero, "", fmt.Errorf("%s cancelled: %w", op, ctx.Err())
		}

		result, err := src.Fetch(ctx)
		if err == nil && !isZeroResult(result) {
			return result, src.Name, nil
		}
		if err == nil {
			observability.Warn("source returned no data, trying next",
				"operation", op,
				"source", src.Name)
			failures = append(failures, fmt.Sprintf("%s: no data", src.Name))
			continue
		}

		observability.Warn("source failed, trying next",
			"operation", op,
			"source", src.Name,
			"error", err)
		failures = append(failures, fmt.Sprintf("%s: %v", src.Name, err))
	}

	return zero, "", NewStockDataError(KindServiceUnavailable, op, "all",
		fmt.Errorf("all %d sources failed: %s", len(sources), strings.Join(failures, "; ")))
}

// isZeroResult reports whether a fetch produced nothing usable: a nil
// pointer, nil slice or map, or the type's zero value.
func isZeroResult[T any](v T) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}
