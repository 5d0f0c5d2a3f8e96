package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so callers can decide whether to
// retry, fall back, or report the error to the client.
type ErrorKind string

const (
	KindInvalidSymbol      ErrorKind = "invalid_symbol"
	KindDataNotFound       ErrorKind = "data_not_found"
	KindRateLimited        ErrorKind = "rate_limited"
	KindTimeout            ErrorKind = "timeout"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindInternal           ErrorKind = "internal"
)

// StockDataError is the error type returned by every provider adapter.
// Op is the operation attempted ("fetch_price"), Source the provider
// that failed ("alphavantage").
type StockDataError struct {
	Kind   ErrorKind
	Op     string
	Source string
	Err    error
}

func (e *StockDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s from %s: %v", e.Kind, e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s from %s", e.Kind, e.Op, e.Source)
}

func (e *StockDataError) Unwrap() error {
	return e.Err
}

// NewStockDataError builds a classified provider error.
func NewStockDataError(kind ErrorKind, op, source string, err error) *StockDataError {
	return &StockDataError{Kind: kind, Op: op, Source: source, Err: err}
}

// KindOf extracts the error kind from err, returning KindInternal for
// unclassified errors and an empty kind for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var sde *StockDataError
	if errors.As(err, &sde) {
		return sde.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the error is transient enough that an
// immediate retry against the same provider might succeed. Invalid
// symbols, missing data and rate limits never get retried: the answer
// will not change, or retrying makes it worse.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindServiceUnavailable:
		return true
	default:
		return false
	}
}
