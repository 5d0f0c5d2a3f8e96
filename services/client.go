package services

import (
	"net/http"
	"time"
)

// defaultHTTPTimeout bounds every outbound provider request. Overridden
// through ApplyClientSettings at startup.
var defaultHTTPTimeout = 30 * time.Second

// ClientSettings carries the environment-tunable knobs for outbound
// HTTP clients and the retry wrapper.
type ClientSettings struct {
	HTTPTimeout      time.Duration
	MaxRetryAttempts int
	RetryBaseDelay   time.Duration
}

// ApplyClientSettings overrides the package defaults used by the
// provider constructors and WithRetry. Zero fields keep the current
// values. Call once at startup, before constructing services.
func ApplyClientSettings(s ClientSettings) {
	if s.HTTPTimeout > 0 {
		defaultHTTPTimeout = s.HTTPTimeout
	}
	if s.MaxRetryAttempts > 0 {
		DefaultRetryConfig.MaxAttempts = s.MaxRetryAttempts
	}
	if s.RetryBaseDelay > 0 {
		DefaultRetryConfig.BaseDelay = s.RetryBaseDelay
	}
}

// newHTTPClient builds the client shared by the HTTP provider adapters.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
