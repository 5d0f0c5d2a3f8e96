package models

import "time"

// StockReport is the merged, client-facing analysis for one symbol.
// Sections are independently optional: any provider may have failed,
// and the report degrades rather than erroring as long as at least
// one section is present.
type StockReport struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`

	Price *PriceSnapshot `json:"price,omitempty"`

	FinancialMetrics *FinancialMetrics `json:"financial_metrics,omitempty"`

	AnalystRatings     []AnalystRating `json:"analyst_ratings,omitempty"`
	ConsensusRating    *string         `json:"consensus_rating,omitempty"`
	AveragePriceTarget *float64        `json:"average_price_target,omitempty"`

	Earnings         []EarningsEntry `json:"earnings,omitempty"`
	NextEarningsDate *time.Time      `json:"next_earnings_date,omitempty"`

	SentimentItems   []SentimentItem   `json:"sentiment_items,omitempty"`
	SentimentSummary *SentimentSummary `json:"sentiment_summary,omitempty"`

	LastUpdated      time.Time `json:"last_updated"`
	DataSources      []string  `json:"data_sources"`
	ProcessingErrors []string  `json:"processing_errors,omitempty"`
	PartialData      bool      `json:"partial_data"`
	RequestID        string    `json:"request_id,omitempty"`
}
