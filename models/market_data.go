package models

import "time"

// PriceSnapshot represents the latest traded price for a symbol,
// normalized across providers. Price must be positive when present.
type PriceSnapshot struct {
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Source        string  `json:"source"`
}

// FinancialMetrics holds fundamental ratios and figures for a company.
// Every field is optional; providers routinely return partial data.
type FinancialMetrics struct {
	MarketCap        *float64 `json:"market_cap,omitempty"`
	PERatio          *float64 `json:"pe_ratio,omitempty"`
	PEGRatio         *float64 `json:"peg_ratio,omitempty"`
	PriceToBook      *float64 `json:"price_to_book,omitempty"`
	PriceToSales     *float64 `json:"price_to_sales,omitempty"`
	RevenueTTM       *float64 `json:"revenue_ttm,omitempty"`
	GrossMargin      *float64 `json:"gross_margin,omitempty"`
	OperatingMargin  *float64 `json:"operating_margin,omitempty"`
	ProfitMargin     *float64 `json:"profit_margin,omitempty"`
	ReturnOnEquity   *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets   *float64 `json:"return_on_assets,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio     *float64 `json:"current_ratio,omitempty"`
	QuickRatio       *float64 `json:"quick_ratio,omitempty"`
	DividendYield    *float64 `json:"dividend_yield,omitempty"`
	Beta             *float64 `json:"beta,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`
}

// IsEmpty reports whether no metric was populated.
func (m *FinancialMetrics) IsEmpty() bool {
	if m == nil {
		return true
	}
	fields := []*float64{
		m.MarketCap, m.PERatio, m.PEGRatio, m.PriceToBook, m.PriceToSales,
		m.RevenueTTM, m.GrossMargin, m.OperatingMargin, m.ProfitMargin,
		m.ReturnOnEquity, m.ReturnOnAssets, m.DebtToEquity, m.CurrentRatio,
		m.QuickRatio, m.DividendYield, m.Beta, m.FiftyTwoWeekHigh, m.FiftyTwoWeekLow,
	}
	for _, f := range fields {
		if f != nil {
			return false
		}
	}
	return true
}

// AnalystRating is a single analyst recommendation for a symbol.
// Firm and Rating must both be non-empty for the rating to count as valid.
type AnalystRating struct {
	Firm        string     `json:"firm"`
	Rating      string     `json:"rating"`
	PriceTarget *float64   `json:"price_target,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// EarningsEntry is one reported or estimated earnings period.
type EarningsEntry struct {
	EPSEstimate     *float64 `json:"eps_estimate,omitempty"`
	EPSActual       *float64 `json:"eps_actual,omitempty"`
	RevenueEstimate *float64 `json:"revenue_estimate,omitempty"`
	RevenueActual   *float64 `json:"revenue_actual,omitempty"`
	Quarter         string   `json:"quarter,omitempty"`
	Year            int      `json:"year,omitempty"`
}

// NewsArticle is a normalized article from any news source.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Float returns a pointer to v, for populating optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
