package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockscope/agents"
	"stockscope/config"
	"stockscope/observability"
	"stockscope/services"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	coordinator *agents.Coordinator
	cfg         *config.Config
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(coordinator *agents.Coordinator, cfg *config.Config) *APIHandler {
	return &APIHandler{coordinator: coordinator, cfg: cfg}
}

// analyzeRequest is the body of POST /api/analyze and /api/analyze/stream
type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

// handleHealth returns the health status and configured providers
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := map[string]bool{
		"alphavantage": h.cfg.Providers.AlphaVantageAPIKey != "",
		"yahoo":        true, // keyless
		"alpaca":       h.cfg.Providers.AlpacaAPIKey != "" && h.cfg.Providers.AlpacaAPISecret != "",
		"finnhub":      h.cfg.Providers.FinnhubAPIKey != "",
		"fmp":          h.cfg.Providers.FMPAPIKey != "",
		"newsapi":      h.cfg.Providers.NewsAPIKey != "",
		"llm":          h.cfg.LLM.Provider != "",
	}

	h.jsonResponse(w, map[string]interface{}{
		"status":    "ok",
		"providers": providers,
	})
}

// handleAnalyze runs a full merged analysis and returns the report
func (h *APIHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	report, err := h.coordinator.Analyze(r.Context(), req.Symbol)
	if err != nil {
		h.analysisError(w, r, req.Symbol, err)
		return
	}

	h.jsonResponse(w, report)
}

// handleAnalyzeStream runs the analysis sequentially and streams
// progress as server-sent events, one JSON frame per event.
func (h *APIHandler) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.jsonError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, err := h.coordinator.Stream(r.Context(), req.Symbol)
	if err != nil {
		h.analysisError(w, r, req.Symbol, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			observability.Error("failed to marshal stream event", "error", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func (h *APIHandler) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.Symbol == "" {
		h.jsonError(w, "Missing symbol", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// analysisError maps the error taxonomy to HTTP status codes:
// invalid symbols are the caller's fault, timeouts bubble up as 504,
// and everything else means every upstream failed us.
func (h *APIHandler) analysisError(w http.ResponseWriter, r *http.Request, symbol string, err error) {
	observability.WithSymbol(symbol).Error("analysis failed", "error", err)

	status := http.StatusBadGateway
	switch {
	case services.KindOf(err) == services.KindInvalidSymbol:
		status = http.StatusBadRequest
	case services.KindOf(err) == services.KindTimeout,
		errors.Is(err, r.Context().Err()) && r.Context().Err() != nil:
		status = http.StatusGatewayTimeout
	}

	h.jsonError(w, err.Error(), status)
}

// jsonResponse writes a JSON response
func (h *APIHandler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Error("failed to encode response", "error", err)
	}
}

// jsonError writes a JSON error response
func (h *APIHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
