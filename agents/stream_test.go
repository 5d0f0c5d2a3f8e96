package agents

import (
	"context"
	"testing"
	"time"

	"stockscope/services"
)

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var collected []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestStream_InvalidSymbolFailsFast(t *testing.T) {
	c := NewCoordinator(succeedingPriceAgent())

	_, err := c.Stream(context.Background(), "123!")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if services.KindOf(err) != services.KindInvalidSymbol {
		t.Errorf("expected invalid_symbol, got %v", services.KindOf(err))
	}
}

func TestStream_EventSequence(t *testing.T) {
	company := &stubAgent{
		name:    AgentCompany,
		message: "Retrieving company information...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			name := "Apple"
			state.CompanyName = &name
			state.AgentStatuses[AgentCompany] = StatusSuccess
			state.MarkCompleted(AgentCompany)
			return state
		},
	}
	c := NewCoordinator(succeedingPriceAgent(), company)

	events, err := c.Stream(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	collected := collectEvents(t, events)

	wantStatuses := []string{
		EventStarted,
		EventProcessing, EventAgentComplete,
		EventProcessing, EventAgentComplete,
		EventFinalizing,
		EventComplete,
	}
	if len(collected) != len(wantStatuses) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantStatuses), len(collected), collected)
	}
	for i, want := range wantStatuses {
		if collected[i].Status != want {
			t.Errorf("event %d: expected status %s, got %s", i, want, collected[i].Status)
		}
	}

	started := collected[0]
	if started.Progress != 0 {
		t.Errorf("expected started progress 0, got %d", started.Progress)
	}
	if len(started.AgentsStatus) != TotalAgents {
		t.Errorf("expected full agent status map, got %v", started.AgentsStatus)
	}
	if started.RequestID == "" {
		t.Error("expected request ID on every event")
	}

	firstComplete := collected[2]
	if firstComplete.Agent != AgentPrice {
		t.Errorf("expected price agent completion, got %s", firstComplete.Agent)
	}
	if firstComplete.AgentStatus != "success" {
		t.Errorf("expected success agent status, got %s", firstComplete.AgentStatus)
	}
	if _, ok := firstComplete.PartialData[AgentPrice]; !ok {
		t.Errorf("expected partial payload for price, got %v", firstComplete.PartialData)
	}

	finalizing := collected[5]
	if finalizing.Progress != 95 {
		t.Errorf("expected finalizing progress 95, got %d", finalizing.Progress)
	}

	final := collected[6]
	if final.Progress != 100 {
		t.Errorf("expected complete progress 100, got %d", final.Progress)
	}
	if final.Data == nil || final.Data.Symbol != "AAPL" {
		t.Errorf("expected report attached, got %+v", final.Data)
	}
	if final.ValidationSummary == nil {
		t.Error("expected validation summary on complete event")
	}
}

func TestStream_ValidationFailureMarksWarning(t *testing.T) {
	// Agent reports success but leaves no price data, so validation fails
	hollow := &stubAgent{
		name:    AgentPrice,
		message: "Fetching real-time price data...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			state.AgentStatuses[AgentPrice] = StatusSuccess
			state.MarkCompleted(AgentPrice)
			return state
		},
	}
	company := &stubAgent{
		name:    AgentCompany,
		message: "Retrieving company information...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			name := "Apple"
			state.CompanyName = &name
			state.AgentStatuses[AgentCompany] = StatusSuccess
			state.MarkCompleted(AgentCompany)
			return state
		},
	}
	c := NewCoordinator(hollow, company)

	events, err := c.Stream(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	collected := collectEvents(t, events)

	var priceComplete *Event
	for i := range collected {
		if collected[i].Status == EventAgentComplete && collected[i].Agent == AgentPrice {
			priceComplete = &collected[i]
			break
		}
	}
	if priceComplete == nil {
		t.Fatal("expected price agent_complete event")
	}
	if priceComplete.AgentStatus != "warning" {
		t.Errorf("expected warning agent status, got %s", priceComplete.AgentStatus)
	}
}

func TestStream_AllAgentsFailEmitsError(t *testing.T) {
	c := NewCoordinator(failingAgent(AgentPrice), failingAgent(AgentCompany))

	events, err := c.Stream(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	collected := collectEvents(t, events)

	if len(collected) == 0 {
		t.Fatal("expected events, got none")
	}
	final := collected[len(collected)-1]
	if final.Status != EventError {
		t.Errorf("expected terminal error event, got %s", final.Status)
	}
	if final.Progress != 100 {
		t.Errorf("expected error progress 100, got %d", final.Progress)
	}
	if final.Error == "" {
		t.Error("expected error message on error event")
	}
	if final.Data != nil {
		t.Error("expected no report on error event")
	}
}

func TestStream_CancellationStopsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocker := &stubAgent{
		name:    AgentPrice,
		message: "Fetching real-time price data...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			cancel()
			state.AgentStatuses[AgentPrice] = StatusSuccess
			state.MarkCompleted(AgentPrice)
			return state
		},
	}
	c := NewCoordinator(blocker, failingAgent(AgentCompany))

	events, err := c.Stream(ctx, "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	collected := collectEvents(t, events)

	for _, ev := range collected {
		if ev.Status == EventComplete {
			t.Error("expected no complete event after cancellation")
		}
	}
}
