package agents

import (
	"context"
	"fmt"

	"stockscope/models"
	"stockscope/observability"
	"stockscope/sentiment"
	"stockscope/services"
)

// Agent is one independent task in a symbol analysis. Run receives a
// private clone of the state and returns it mutated; agents never
// return errors — failures are recorded on the state so the rest of
// the analysis can proceed.
type Agent interface {
	Name() string
	Message() string
	Run(ctx context.Context, state *AnalysisState) *AnalysisState
}

// PriceProvider pairs a price source with its reporting name.
type PriceProvider struct {
	Name    string
	Service services.PriceService
}

// FundamentalsProvider pairs a fundamentals source with its reporting name.
type FundamentalsProvider struct {
	Name    string
	Service services.FundamentalsService
}

// CompanyProvider pairs a company-name source with its reporting name.
type CompanyProvider struct {
	Name    string
	Service services.CompanyService
}

// PriceAgent fetches the latest price through an ordered provider chain.
type PriceAgent struct {
	providers []PriceProvider
}

// NewPriceAgent creates a PriceAgent with the given fallback chain.
func NewPriceAgent(providers ...PriceProvider) *PriceAgent {
	return &PriceAgent{providers: providers}
}

func (a *PriceAgent) Name() string    { return AgentPrice }
func (a *PriceAgent) Message() string { return "Fetching real-time price data..." }

func (a *PriceAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.AgentStatuses[AgentPrice] = StatusProcessing
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAgent(AgentPrice)

	sources := make([]services.Source[*models.PriceSnapshot], 0, len(a.providers))
	for _, p := range a.providers {
		p := p
		sources = append(sources, services.Source[*models.PriceSnapshot]{
			Name: p.Name,
			Fetch: func(ctx context.Context) (*models.PriceSnapshot, error) {
				return p.Service.GetPrice(ctx, state.Symbol)
			},
		})
	}

	snapshot, sourceName, err := services.ExecuteWithFallback(ctx, "fetch_price", sources)
	if err != nil {
		observability.WithAgent(AgentPrice).Error("price fetch failed",
			"symbol", state.Symbol,
			"error", err)
		observability.GetMetrics().RecordAgentError(AgentPrice, string(services.KindOf(err)))
		state.AddError(fmt.Sprintf("Price fetch failed: %v", err))
		state.PartialData = true
		state.AgentStatuses[AgentPrice] = StatusFailed
		return state
	}

	snapshot.Source = sourceName
	state.Price = snapshot
	state.AddDataSource(sourceName)
	state.AgentStatuses[AgentPrice] = StatusSuccess
	state.MarkCompleted(AgentPrice)

	observability.WithAgent(AgentPrice).Info("price fetched",
		"symbol", state.Symbol,
		"price", snapshot.Price,
		"source", sourceName)
	return state
}

// FundamentalsAgent fetches financial metrics through a provider chain.
// On failure it leaves an explicit empty metrics payload so the merged
// state distinguishes "fetched nothing" from "never ran".
type FundamentalsAgent struct {
	providers []FundamentalsProvider
}

// NewFundamentalsAgent creates a FundamentalsAgent with the given fallback chain.
func NewFundamentalsAgent(providers ...FundamentalsProvider) *FundamentalsAgent {
	return &FundamentalsAgent{providers: providers}
}

func (a *FundamentalsAgent) Name() string    { return AgentFundamentals }
func (a *FundamentalsAgent) Message() string { return "Analyzing financial metrics..." }

func (a *FundamentalsAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.AgentStatuses[AgentFundamentals] = StatusProcessing
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAgent(AgentFundamentals)

	sources := make([]services.Source[*models.FinancialMetrics], 0, len(a.providers))
	for _, p := range a.providers {
		p := p
		sources = append(sources, services.Source[*models.FinancialMetrics]{
			Name: p.Name,
			Fetch: func(ctx context.Context) (*models.FinancialMetrics, error) {
				return p.Service.GetFundamentals(ctx, state.Symbol)
			},
		})
	}

	metrics, sourceName, err := services.ExecuteWithFallback(ctx, "fetch_fundamentals", sources)
	if err != nil {
		observability.WithAgent(AgentFundamentals).Error("fundamentals fetch failed",
			"symbol", state.Symbol,
			"error", err)
		observability.GetMetrics().RecordAgentError(AgentFundamentals, string(services.KindOf(err)))
		state.FinancialMetrics = &models.FinancialMetrics{}
		state.AddError(fmt.Sprintf("Fundamentals fetch failed: %v", err))
		state.PartialData = true
		state.AgentStatuses[AgentFundamentals] = StatusFailed
		return state
	}

	state.FinancialMetrics = metrics
	state.AddDataSource(sourceName + "_fundamentals")
	state.AgentStatuses[AgentFundamentals] = StatusSuccess
	state.MarkCompleted(AgentFundamentals)

	observability.WithAgent(AgentFundamentals).Info("fundamentals fetched",
		"symbol", state.Symbol,
		"source", sourceName)
	return state
}

// AnalystAgent fetches analyst ratings and earnings figures. The two
// fetches are independent: one failing degrades the payload, both
// failing fails the agent.
type AnalystAgent struct {
	ratings  services.RatingsService
	earnings services.EarningsService
}

// NewAnalystAgent creates an AnalystAgent.
func NewAnalystAgent(ratings services.RatingsService, earnings services.EarningsService) *AnalystAgent {
	return &AnalystAgent{ratings: ratings, earnings: earnings}
}

func (a *AnalystAgent) Name() string    { return AgentAnalyst }
func (a *AnalystAgent) Message() string { return "Gathering analyst ratings..." }

func (a *AnalystAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.AgentStatuses[AgentAnalyst] = StatusProcessing
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAgent(AgentAnalyst)

	var ratingsErr, earningsErr error

	if a.ratings != nil {
		ratings, err := a.ratings.GetAnalystRatings(ctx, state.Symbol)
		if err != nil {
			ratingsErr = err
		} else if len(ratings) > 0 {
			state.AnalystRatings = ratings
			state.AddDataSource("finnhub_analysts")
		}
	}

	if a.earnings != nil {
		entries, next, err := a.earnings.GetEarnings(ctx, state.Symbol)
		if err != nil {
			earningsErr = err
		} else {
			if len(entries) > 0 {
				state.Earnings = entries
				state.AddDataSource("yahoo_earnings")
			}
			if next != nil {
				state.NextEarningsDate = next
			}
		}
	}

	if ratingsErr != nil && earningsErr != nil {
		observability.WithAgent(AgentAnalyst).Error("analyst data fetch failed",
			"symbol", state.Symbol,
			"ratings_error", ratingsErr,
			"earnings_error", earningsErr)
		observability.GetMetrics().RecordAgentError(AgentAnalyst, string(services.KindOf(ratingsErr)))
		state.AnalystRatings = []models.AnalystRating{}
		state.Earnings = []models.EarningsEntry{}
		state.AddError(fmt.Sprintf("Analyst data fetch failed: %v; %v", ratingsErr, earningsErr))
		state.PartialData = true
		state.AgentStatuses[AgentAnalyst] = StatusFailed
		return state
	}

	if ratingsErr != nil {
		state.AddError(fmt.Sprintf("Analyst ratings fetch failed: %v", ratingsErr))
		state.PartialData = true
	}
	if earningsErr != nil {
		state.AddError(fmt.Sprintf("Earnings fetch failed: %v", earningsErr))
		state.PartialData = true
	}

	state.AgentStatuses[AgentAnalyst] = StatusSuccess
	state.MarkCompleted(AgentAnalyst)

	observability.WithAgent(AgentAnalyst).Info("analyst data fetched",
		"symbol", state.Symbol,
		"ratings", len(state.AnalystRatings),
		"earnings", len(state.Earnings))
	return state
}

// SentimentAgent runs the news sentiment pipeline. The aggregator
// tolerates source failures internally, so the agent itself always
// completes with at least a neutral summary.
type SentimentAgent struct {
	aggregator *sentiment.Aggregator
}

// NewSentimentAgent creates a SentimentAgent.
func NewSentimentAgent(aggregator *sentiment.Aggregator) *SentimentAgent {
	return &SentimentAgent{aggregator: aggregator}
}

func (a *SentimentAgent) Name() string    { return AgentSentiment }
func (a *SentimentAgent) Message() string { return "Analyzing market sentiment..." }

func (a *SentimentAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.AgentStatuses[AgentSentiment] = StatusProcessing
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAgent(AgentSentiment)

	companyName := ""
	if state.CompanyName != nil {
		companyName = *state.CompanyName
	}

	items, summary := a.aggregator.Analyze(ctx, state.Symbol, companyName)

	state.SentimentItems = items
	if state.SentimentItems == nil {
		state.SentimentItems = []models.SentimentItem{}
	}
	state.SentimentSummary = summary
	state.AddDataSource("newsapi")
	state.AddDataSource("rss_feeds")
	state.AgentStatuses[AgentSentiment] = StatusSuccess
	state.MarkCompleted(AgentSentiment)

	observability.WithAgent(AgentSentiment).Info("sentiment analyzed",
		"symbol", state.Symbol,
		"articles", len(items),
		"overall", summary.OverallLabel)
	return state
}

// CompanyAgent resolves the company name through a provider chain.
// Unlike the data agents, a failure here neither flags partial data
// nor records a processing error: the formatter falls back to a
// synthetic name.
type CompanyAgent struct {
	providers []CompanyProvider
}

// NewCompanyAgent creates a CompanyAgent with the given fallback chain.
func NewCompanyAgent(providers ...CompanyProvider) *CompanyAgent {
	return &CompanyAgent{providers: providers}
}

func (a *CompanyAgent) Name() string    { return AgentCompany }
func (a *CompanyAgent) Message() string { return "Retrieving company information..." }

func (a *CompanyAgent) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.AgentStatuses[AgentCompany] = StatusProcessing
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveAgent(AgentCompany)

	sources := make([]services.Source[string], 0, len(a.providers)+1)
	for _, p := range a.providers {
		p := p
		sources = append(sources, services.Source[string]{
			Name: p.Name,
			Fetch: func(ctx context.Context) (string, error) {
				return p.Service.GetCompanyName(ctx, state.Symbol)
			},
		})
	}
	sources = append(sources, services.Source[string]{
		Name: "static_map",
		Fetch: func(ctx context.Context) (string, error) {
			if name := sentiment.CompanyNameFor(state.Symbol); name != "" {
				return name, nil
			}
			return "", services.NewStockDataError(services.KindDataNotFound, "fetch_company", "static_map",
				fmt.Errorf("symbol %s not in static mapping", state.Symbol))
		},
	})

	name, sourceName, err := services.ExecuteWithFallback(ctx, "fetch_company", sources)
	if err != nil {
		observability.WithAgent(AgentCompany).Warn("company name lookup failed",
			"symbol", state.Symbol,
			"error", err)
		observability.GetMetrics().RecordAgentError(AgentCompany, string(services.KindOf(err)))
		state.CompanyName = nil
		state.AgentStatuses[AgentCompany] = StatusFailed
		return state
	}

	state.CompanyName = &name
	state.AgentStatuses[AgentCompany] = StatusSuccess
	state.MarkCompleted(AgentCompany)

	observability.WithAgent(AgentCompany).Info("company resolved",
		"symbol", state.Symbol,
		"company", name,
		"source", sourceName)
	return state
}
