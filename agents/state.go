package agents

import (
	"time"

	"stockscope/models"
)

// Agent names, also used as validation and status keys.
const (
	AgentPrice        = "price"
	AgentFundamentals = "fundamentals"
	AgentAnalyst      = "analyst"
	AgentSentiment    = "sentiment"
	AgentCompany      = "company"
)

// TotalAgents is the number of task agents in a full analysis.
const TotalAgents = 5

// AgentStatus tracks where an agent is in its lifecycle.
type AgentStatus string

const (
	StatusPending    AgentStatus = "pending"
	StatusProcessing AgentStatus = "processing"
	StatusSuccess    AgentStatus = "success"
	StatusFailed     AgentStatus = "failed"
)

// AnalysisState carries everything accumulated about one symbol query.
// Agents operate on independent clones; the coordinator merges the
// clones back together, so nothing here needs locking.
type AnalysisState struct {
	Symbol    string
	RequestID string

	CompanyName      *string
	Price            *models.PriceSnapshot
	FinancialMetrics *models.FinancialMetrics
	AnalystRatings   []models.AnalystRating
	Earnings         []models.EarningsEntry
	NextEarningsDate *time.Time
	SentimentItems   []models.SentimentItem
	SentimentSummary *models.SentimentSummary

	AgentStatuses     map[string]AgentStatus
	AgentsCompleted   []string
	ValidationResults map[string]bool
	ProcessingErrors  []string
	DataSources       []string
	PartialData       bool

	// errorsBase is the length of ProcessingErrors at Clone time, so
	// Merge can tell which entries a sibling appended itself.
	errorsBase int
}

// NewAnalysisState initializes the state for a symbol query with every
// agent pending.
func NewAnalysisState(symbol, requestID string) *AnalysisState {
	return &AnalysisState{
		Symbol:    symbol,
		RequestID: requestID,
		AgentStatuses: map[string]AgentStatus{
			AgentPrice:        StatusPending,
			AgentFundamentals: StatusPending,
			AgentAnalyst:      StatusPending,
			AgentSentiment:    StatusPending,
			AgentCompany:      StatusPending,
		},
		ValidationResults: make(map[string]bool),
	}
}

// Clone returns a deep copy safe to hand to a concurrently running agent.
func (s *AnalysisState) Clone() *AnalysisState {
	c := *s

	c.AgentStatuses = make(map[string]AgentStatus, len(s.AgentStatuses))
	for k, v := range s.AgentStatuses {
		c.AgentStatuses[k] = v
	}
	c.ValidationResults = make(map[string]bool, len(s.ValidationResults))
	for k, v := range s.ValidationResults {
		c.ValidationResults[k] = v
	}

	c.AgentsCompleted = append([]string(nil), s.AgentsCompleted...)
	c.ProcessingErrors = append([]string(nil), s.ProcessingErrors...)
	c.errorsBase = len(s.ProcessingErrors)
	c.DataSources = append([]string(nil), s.DataSources...)
	c.AnalystRatings = append([]models.AnalystRating(nil), s.AnalystRatings...)
	c.Earnings = append([]models.EarningsEntry(nil), s.Earnings...)
	c.SentimentItems = append([]models.SentimentItem(nil), s.SentimentItems...)

	return &c
}

// MarkCompleted records an agent as completed, idempotently.
func (s *AnalysisState) MarkCompleted(agent string) {
	for _, name := range s.AgentsCompleted {
		if name == agent {
			return
		}
	}
	s.AgentsCompleted = append(s.AgentsCompleted, agent)
}

// AddDataSource records a contributing source, idempotently.
func (s *AnalysisState) AddDataSource(source string) {
	for _, existing := range s.DataSources {
		if existing == source {
			return
		}
	}
	s.DataSources = append(s.DataSources, source)
}

// AddError appends a processing error.
func (s *AnalysisState) AddError(msg string) {
	s.ProcessingErrors = append(s.ProcessingErrors, msg)
}

// Merge folds the result of one agent run into s. Set-like fields
// union (data sources, completed agents), error lists concatenate, and
// every payload field overwrites only when the incoming value is
// present, so a failed sibling can never erase successful data.
func (s *AnalysisState) Merge(other *AnalysisState) {
	if other == nil {
		return
	}

	for _, source := range other.DataSources {
		s.AddDataSource(source)
	}
	for _, agent := range other.AgentsCompleted {
		s.MarkCompleted(agent)
	}

	// A clone starts with its parent's errors; only what it appended
	// after cloning is new. A state built from scratch has base zero,
	// so its whole list concatenates.
	base := other.errorsBase
	if base > len(other.ProcessingErrors) {
		base = len(other.ProcessingErrors)
	}
	s.ProcessingErrors = append(s.ProcessingErrors, other.ProcessingErrors[base:]...)

	if other.CompanyName != nil {
		s.CompanyName = other.CompanyName
	}
	if other.Price != nil {
		s.Price = other.Price
	}
	if other.FinancialMetrics != nil {
		s.FinancialMetrics = other.FinancialMetrics
	}
	if other.AnalystRatings != nil {
		s.AnalystRatings = other.AnalystRatings
	}
	if other.Earnings != nil {
		s.Earnings = other.Earnings
	}
	if other.NextEarningsDate != nil {
		s.NextEarningsDate = other.NextEarningsDate
	}
	if other.SentimentItems != nil {
		s.SentimentItems = other.SentimentItems
	}
	if other.SentimentSummary != nil {
		s.SentimentSummary = other.SentimentSummary
	}

	for agent, status := range other.AgentStatuses {
		// Pending never overwrites a real outcome.
		if status != StatusPending {
			s.AgentStatuses[agent] = status
		}
	}
	for agent, ok := range other.ValidationResults {
		s.ValidationResults[agent] = ok
	}

	s.PartialData = s.PartialData || other.PartialData
}
