package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	SymbolQueriesTotal    *prometheus.CounterVec

	// Agent metrics
	AgentDuration    *prometheus.HistogramVec
	AgentErrorsTotal *prometheus.CounterVec

	// Validation metrics
	ValidationFailuresTotal *prometheus.CounterVec

	// Streaming metrics
	StreamsTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of stock analysis requests",
			},
			[]string{"mode"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Duration of stock analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"mode", "status"},
		),
		AnalysisErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Total number of analysis errors",
			},
			[]string{"error_type"},
		),
		SymbolQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "analysis",
				Name:      "symbol_queries_total",
				Help:      "Total number of queries per symbol",
			},
			[]string{"symbol"},
		),

		AgentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "agent",
				Name:      "duration_seconds",
				Help:      "Duration of agent execution in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"agent"},
		),
		AgentErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "agent",
				Name:      "errors_total",
				Help:      "Total number of agent errors",
			},
			[]string{"agent", "error_type"},
		),

		ValidationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "validation",
				Name:      "failures_total",
				Help:      "Total number of data validation failures",
			},
			[]string{"data_kind"},
		),

		StreamsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "stream",
				Name:      "total",
				Help:      "Total number of analysis streams by terminal status",
			},
			[]string{"status"},
		),

		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockscope",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stockscope",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockscope",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordAnalysisRequest records a stock analysis request
func (m *Metrics) RecordAnalysisRequest(mode string) {
	m.AnalysisRequestsTotal.WithLabelValues(mode).Inc()
}

// RecordSymbolQuery records a query for a symbol
func (m *Metrics) RecordSymbolQuery(symbol string) {
	m.SymbolQueriesTotal.WithLabelValues(symbol).Inc()
}

// RecordAnalysisDuration records the duration of a stock analysis
func (m *Metrics) RecordAnalysisDuration(mode, status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(mode, status).Observe(duration.Seconds())
}

// RecordAnalysisError records an analysis error
func (m *Metrics) RecordAnalysisError(errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordAgentDuration records the duration of an agent execution
func (m *Metrics) RecordAgentDuration(agent string, duration time.Duration) {
	m.AgentDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordAgentError records an agent error
func (m *Metrics) RecordAgentError(agent, errorType string) {
	m.AgentErrorsTotal.WithLabelValues(agent, errorType).Inc()
}

// RecordValidationFailure records a failed validation for a data kind
func (m *Metrics) RecordValidationFailure(dataKind string) {
	m.ValidationFailuresTotal.WithLabelValues(dataKind).Inc()
}

// RecordStream records a completed stream by its terminal status
func (m *Metrics) RecordStream(status string) {
	m.StreamsTotal.WithLabelValues(status).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveAnalysis records the analysis duration and status
func (t *Timer) ObserveAnalysis(mode, status string) {
	t.metrics.RecordAnalysisDuration(mode, status, time.Since(t.start))
}

// ObserveAgent records the agent duration
func (t *Timer) ObserveAgent(agent string) {
	t.metrics.RecordAgentDuration(agent, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
