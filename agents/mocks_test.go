package agents

import (
	"context"
	"time"

	"stockscope/models"
)

// stubAgent is a configurable Agent for coordinator and stream tests.
type stubAgent struct {
	name    string
	message string
	run     func(ctx context.Context, state *AnalysisState) *AnalysisState
}

func (a *stubAgent) Name() string    { return a.name }
func (a *stubAgent) Message() string { return a.message }

func (a *stubAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	if a.run != nil {
		return a.run(ctx, state)
	}
	state.AgentStatuses[a.name] = StatusSuccess
	state.MarkCompleted(a.name)
	return state
}

// succeedingPriceAgent returns a stub that fills in price data the way
// the real price agent would.
func succeedingPriceAgent() *stubAgent {
	return &stubAgent{
		name:    AgentPrice,
		message: "Fetching real-time price data...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			state.Price = &models.PriceSnapshot{Price: 150.25, Currency: "USD", Source: "yahoo"}
			state.AddDataSource("yahoo")
			state.AgentStatuses[AgentPrice] = StatusSuccess
			state.MarkCompleted(AgentPrice)
			return state
		},
	}
}

func failingAgent(name string) *stubAgent {
	return &stubAgent{
		name:    name,
		message: name + " running...",
		run: func(ctx context.Context, state *AnalysisState) *AnalysisState {
			state.AddError(name + " fetch failed: provider down")
			state.PartialData = true
			state.AgentStatuses[name] = StatusFailed
			return state
		},
	}
}

// mockPriceService implements services.PriceService
type mockPriceService struct {
	snapshot  *models.PriceSnapshot
	err       error
	callCount int
}

func (m *mockPriceService) GetPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

// mockFundamentalsService implements services.FundamentalsService
type mockFundamentalsService struct {
	metrics *models.FinancialMetrics
	err     error
}

func (m *mockFundamentalsService) GetFundamentals(ctx context.Context, symbol string) (*models.FinancialMetrics, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.metrics, nil
}

// mockRatingsService implements services.RatingsService
type mockRatingsService struct {
	ratings []models.AnalystRating
	err     error
}

func (m *mockRatingsService) GetAnalystRatings(ctx context.Context, symbol string) ([]models.AnalystRating, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ratings, nil
}

// mockEarningsService implements services.EarningsService
type mockEarningsService struct {
	entries []models.EarningsEntry
	next    *time.Time
	err     error
}

func (m *mockEarningsService) GetEarnings(ctx context.Context, symbol string) ([]models.EarningsEntry, *time.Time, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.entries, m.next, nil
}

// mockCompanyService implements services.CompanyService
type mockCompanyService struct {
	name string
	err  error
}

func (m *mockCompanyService) GetCompanyName(ctx context.Context, symbol string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.name, nil
}
