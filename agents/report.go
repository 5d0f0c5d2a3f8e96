package agents

import (
	"fmt"
	"strings"
	"time"

	"stockscope/models"
	"stockscope/observability"
	"stockscope/services"
)

// FormatReport assembles the client-facing report from the merged
// state. It degrades gracefully: missing sections are omitted or
// defaulted, and only a state with no data at all is an error.
func FormatReport(symbol string, state *AnalysisState) (*models.StockReport, error) {
	hasPrice := state.Price != nil
	// A failed fundamentals agent leaves an explicit empty payload
	// behind; that is absence, not data.
	hasFundamentals := state.FinancialMetrics != nil && !state.FinancialMetrics.IsEmpty()
	hasAnalyst := len(state.AnalystRatings) > 0
	hasSentiment := len(state.SentimentItems) > 0
	hasCompany := state.CompanyName != nil && *state.CompanyName != ""

	if !hasPrice && !hasFundamentals && !hasAnalyst && !hasSentiment && !hasCompany {
		observability.WithSymbol(symbol).Error("no data available, all agents failed",
			"errors", state.ProcessingErrors)
		return nil, services.NewStockDataError(services.KindDataNotFound, "format_report", "all",
			fmt.Errorf("no data available - all agents failed"))
	}

	companyName := symbol + " Corporation"
	if hasCompany {
		companyName = *state.CompanyName
	}

	price := state.Price
	if price != nil && price.Currency == "" {
		price.Currency = "USD"
	}

	summary := state.SentimentSummary
	if summary == nil {
		summary = models.NewNeutralSummary("No sentiment data available")
	}

	report := &models.StockReport{
		Symbol:             symbol,
		CompanyName:        companyName,
		Price:              price,
		FinancialMetrics:   state.FinancialMetrics,
		AnalystRatings:     state.AnalystRatings,
		ConsensusRating:    ConsensusRating(state.AnalystRatings),
		AveragePriceTarget: averagePriceTarget(state.AnalystRatings),
		Earnings:           state.Earnings,
		NextEarningsDate:   state.NextEarningsDate,
		SentimentItems:     state.SentimentItems,
		SentimentSummary:   summary,
		LastUpdated:        time.Now().UTC(),
		DataSources:        state.DataSources,
		ProcessingErrors:   state.ProcessingErrors,
		PartialData:        state.PartialData,
		RequestID:          state.RequestID,
	}

	if len(state.ProcessingErrors) > 0 {
		observability.WithSymbol(symbol).Warn("report generated with errors",
			"errors", state.ProcessingErrors)
	} else {
		observability.WithSymbol(symbol).Info("complete report generated")
	}

	return report, nil
}

// ConsensusRating reduces ratings to a majority vote over BUY, HOLD
// and SELL keyword matches. Ties break in the order BUY > HOLD > SELL;
// ratings with no recognizable keyword yield the default HOLD; no
// ratings yields nil.
func ConsensusRating(ratings []models.AnalystRating) *string {
	if len(ratings) == 0 {
		return nil
	}

	counts := map[string]int{}
	for _, rating := range ratings {
		text := strings.ToUpper(rating.Rating)
		switch {
		case strings.Contains(text, "BUY"):
			counts["BUY"]++
		case strings.Contains(text, "HOLD"):
			counts["HOLD"]++
		case strings.Contains(text, "SELL"):
			counts["SELL"]++
		}
	}

	consensus := "HOLD"
	if len(counts) > 0 {
		best := -1
		for _, action := range []string{"BUY", "HOLD", "SELL"} {
			if counts[action] > best {
				best = counts[action]
				consensus = action
			}
		}
	}
	return &consensus
}

// averagePriceTarget averages the price targets present in the
// ratings, returning nil when none carry one.
func averagePriceTarget(ratings []models.AnalystRating) *float64 {
	var sum float64
	var n int
	for _, rating := range ratings {
		if rating.PriceTarget != nil {
			sum += *rating.PriceTarget
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// kindName extracts the error kind string for metrics labels.
func kindName(err error) services.ErrorKind {
	return services.KindOf(err)
}
