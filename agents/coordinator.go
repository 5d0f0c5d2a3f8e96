package agents

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"stockscope/models"
	"stockscope/observability"
)

// Coordinator fans a symbol query out to every task agent, merges the
// results and formats the final report.
type Coordinator struct {
	agents []Agent
}

// NewCoordinator creates a Coordinator over the given agents. Order
// matters: results are merged and streamed in slice order.
func NewCoordinator(agents ...Agent) *Coordinator {
	return &Coordinator{agents: agents}
}

// Agents returns the coordinator's agents in execution order.
func (c *Coordinator) Agents() []Agent {
	return c.agents
}

// Analyze runs every agent concurrently against a private clone of the
// initial state, merges the clones in fixed agent order, validates
// each data kind and formats the report. Only an invalid symbol or a
// total data blackout produces an error.
func (c *Coordinator) Analyze(ctx context.Context, rawSymbol string) (*models.StockReport, error) {
	symbol, err := ValidateSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest("merged")
	metrics.RecordSymbolQuery(symbol)
	timer := metrics.NewTimer()

	state := NewAnalysisState(symbol, uuid.NewString())
	logger := observability.WithSymbol(symbol).With("request_id", state.RequestID)
	logger.Info("starting coordinated analysis", "agents", len(c.agents))

	results := make([]*AnalysisState, len(c.agents))
	var wg sync.WaitGroup
	for i, agent := range c.agents {
		wg.Add(1)
		go func(i int, agent Agent) {
			defer wg.Done()
			results[i] = agent.Run(ctx, state.Clone())
		}(i, agent)
	}
	wg.Wait()

	for _, result := range results {
		state.Merge(result)
	}

	for _, agent := range c.agents {
		ValidateAgentResult(agent.Name(), state)
	}

	progress := CalculateProgress(state)
	logger.Info("analysis merged",
		"completed", len(state.AgentsCompleted),
		"progress", progress,
		"errors", len(state.ProcessingErrors))

	report, err := FormatReport(symbol, state)
	if err != nil {
		metrics.RecordAnalysisError(string(kindName(err)))
		timer.ObserveAnalysis("merged", "error")
		return nil, err
	}

	timer.ObserveAnalysis("merged", "success")
	return report, nil
}

// CalculateProgress scores an analysis out of 100: 85 points for agent
// completion, 10 for validations performed, and a final 5 once every
// agent has completed.
func CalculateProgress(state *AnalysisState) int {
	base := float64(len(state.AgentsCompleted)) / TotalAgents * 85
	validation := float64(len(state.ValidationResults)) / TotalAgents * 10

	formatting := 0.0
	if len(state.AgentsCompleted) == TotalAgents {
		formatting = 5
	}

	progress := int(base + validation + formatting)
	if progress > 100 {
		progress = 100
	}
	return progress
}
