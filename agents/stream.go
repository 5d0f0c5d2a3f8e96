package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stockscope/models"
	"stockscope/observability"
)

// Event statuses, in the order a stream can emit them.
const (
	EventStarted       = "started"
	EventProcessing    = "processing"
	EventAgentComplete = "agent_complete"
	EventFinalizing    = "finalizing"
	EventComplete      = "complete"
	EventError         = "error"
	EventCancelled     = "cancelled"
)

// Event is one frame of a streamed analysis.
type Event struct {
	Status            string                 `json:"status"`
	Message           string                 `json:"message"`
	Progress          int                    `json:"progress"`
	CurrentAgent      string                 `json:"current_agent,omitempty"`
	Agent             string                 `json:"agent,omitempty"`
	AgentStatus       string                 `json:"agent_status,omitempty"`
	AgentsStatus      map[string]AgentStatus `json:"agents_status,omitempty"`
	PartialData       map[string]any         `json:"partial_data,omitempty"`
	Data              *models.StockReport    `json:"data,omitempty"`
	ValidationSummary map[string]bool        `json:"validation_summary,omitempty"`
	DataSources       []string               `json:"data_sources,omitempty"`
	Error             string                 `json:"error,omitempty"`
	RequestID         string                 `json:"request_id,omitempty"`
}

// Stream runs the agents sequentially, emitting progress events on the
// returned channel. The channel is closed after a terminal event:
// complete, error, or cancelled when ctx is done. Invalid symbols fail
// before any event is produced.
func (c *Coordinator) Stream(ctx context.Context, rawSymbol string) (<-chan Event, error) {
	symbol, err := ValidateSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest("stream")
	metrics.RecordSymbolQuery(symbol)

	ch := make(chan Event)
	go c.runStream(ctx, symbol, ch)
	return ch, nil
}

func (c *Coordinator) runStream(ctx context.Context, symbol string, ch chan<- Event) {
	defer close(ch)

	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	state := NewAnalysisState(symbol, uuid.NewString())
	logger := observability.WithSymbol(symbol).With("request_id", state.RequestID)

	// emit sends an event unless the client has gone away. Cancellation
	// is checked first so a ready reader cannot mask it.
	emit := func(ev Event) bool {
		ev.RequestID = state.RequestID
		if ctx.Err() != nil {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case ch <- ev:
			return true
		}
	}

	// cancelled tries to deliver the terminal cancelled event without
	// blocking on a reader that already disconnected.
	cancelled := func() {
		logger.Info("stream cancelled", "progress", CalculateProgress(state))
		metrics.RecordStream(EventCancelled)
		timer.ObserveAnalysis("stream", EventCancelled)
		select {
		case ch <- Event{
			Status:    EventCancelled,
			Message:   fmt.Sprintf("Analysis cancelled for %s", symbol),
			Progress:  CalculateProgress(state),
			RequestID: state.RequestID,
		}:
		default:
		}
	}

	if !emit(Event{
		Status:       EventStarted,
		Message:      fmt.Sprintf("Starting coordinated analysis for %s", symbol),
		Progress:     0,
		AgentsStatus: statusSnapshot(state),
	}) {
		cancelled()
		return
	}

	for i, agent := range c.agents {
		if !emit(Event{
			Status:       EventProcessing,
			Message:      agent.Message(),
			Progress:     i * 80 / len(c.agents),
			CurrentAgent: agent.Name(),
		}) {
			cancelled()
			return
		}

		state = agent.Run(ctx, state)
		ValidateAgentResult(agent.Name(), state)

		agentStatus := "warning"
		if state.ValidationResults[agent.Name()] {
			agentStatus = "success"
		}

		if !emit(Event{
			Status:      EventAgentComplete,
			Message:     fmt.Sprintf("%s agent completed", titleCase(agent.Name())),
			Progress:    CalculateProgress(state),
			Agent:       agent.Name(),
			AgentStatus: agentStatus,
			PartialData: map[string]any{agent.Name(): partialPayload(agent.Name(), state)},
		}) {
			cancelled()
			return
		}
	}

	if !emit(Event{
		Status:   EventFinalizing,
		Message:  "Validating results and formatting response...",
		Progress: 95,
	}) {
		cancelled()
		return
	}

	report, err := FormatReport(symbol, state)
	if err != nil {
		logger.Error("stream formatting failed", "error", err)
		metrics.RecordStream(EventError)
		timer.ObserveAnalysis("stream", EventError)
		emit(Event{
			Status:   EventError,
			Message:  fmt.Sprintf("Failed to format final response: %v", err),
			Progress: 100,
			Error:    err.Error(),
		})
		return
	}

	metrics.RecordStream(EventComplete)
	timer.ObserveAnalysis("stream", EventComplete)
	if !emit(Event{
		Status:            EventComplete,
		Message:           fmt.Sprintf("Analysis complete for %s", symbol),
		Progress:          100,
		Data:              report,
		ValidationSummary: state.ValidationResults,
		DataSources:       state.DataSources,
	}) {
		cancelled()
	}
}

// partialPayload picks the just-completed agent's data for streaming.
func partialPayload(agent string, state *AnalysisState) any {
	switch agent {
	case AgentPrice:
		return state.Price
	case AgentFundamentals:
		return state.FinancialMetrics
	case AgentAnalyst:
		return map[string]any{
			"analyst_ratings": state.AnalystRatings,
			"earnings":        state.Earnings,
		}
	case AgentSentiment:
		return map[string]any{
			"sentiment_items":   state.SentimentItems,
			"sentiment_summary": state.SentimentSummary,
		}
	case AgentCompany:
		return state.CompanyName
	default:
		return nil
	}
}

func statusSnapshot(state *AnalysisState) map[string]AgentStatus {
	snapshot := make(map[string]AgentStatus, len(state.AgentStatuses))
	for k, v := range state.AgentStatuses {
		snapshot[k] = v
	}
	return snapshot
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
