package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockscope/config"
	"stockscope/observability"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *APIHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	r.Use(metricsMiddleware)

	// Metrics exposition
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/analyze/stream", h.handleAnalyzeStream)
	})

	return r
}

// corsMiddleware returns CORS middleware with the specified allowed origins
func corsMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	origins := strings.Join(allowedOrigins, ", ")
	if origins == "" {
		origins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records request counts and durations per route
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		routePath := chi.RouteContext(r.Context()).RoutePattern()
		if routePath == "" {
			routePath = r.URL.Path
		}

		observability.GetMetrics().RecordHTTPRequest(
			r.Method,
			routePath,
			strconv.Itoa(ww.Status()),
			time.Since(start),
		)
	})
}
