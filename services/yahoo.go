package services

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"

	"stockscope/models"
	"stockscope/observability"
)

// YahooService fetches quotes and fundamentals from Yahoo Finance.
// It needs no API key and serves as the broad fallback provider:
// price, financial metrics, earnings figures and the company name
// all come from the same equity payload.
type YahooService struct{}

// NewYahooService creates a new YahooService instance
func NewYahooService() *YahooService {
	return &YahooService{}
}

// GetPrice returns the latest price snapshot for a symbol
func (s *YahooService) GetPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	const op = "fetch_price"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerYahoo, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerYahoo, op)

	var snapshot *models.PriceSnapshot
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerYahoo, func() (*models.PriceSnapshot, error) {
			q, err := quote.Get(symbol)
			if err != nil {
				return nil, NewStockDataError(KindServiceUnavailable, op, BreakerYahoo,
					fmt.Errorf("failed to get quote for %s: %w", symbol, err))
			}
			if q == nil || q.RegularMarketPrice <= 0 {
				return nil, NewStockDataError(KindDataNotFound, op, BreakerYahoo,
					fmt.Errorf("no quote data for %s", symbol))
			}

			currency := q.CurrencyID
			if currency == "" {
				currency = "USD"
			}

			return &models.PriceSnapshot{
				Price:         q.RegularMarketPrice,
				Currency:      currency,
				Change:        q.RegularMarketChange,
				ChangePercent: q.RegularMarketChangePercent,
				Volume:        int64(q.RegularMarketVolume),
				Source:        BreakerYahoo,
			}, nil
		})
		if err != nil {
			return err
		}
		snapshot = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerYahoo, op, string(KindOf(err)))
		return nil, err
	}
	return snapshot, nil
}

// GetFundamentals returns financial metrics for a symbol
func (s *YahooService) GetFundamentals(ctx context.Context, symbol string) (*models.FinancialMetrics, error) {
	const op = "fetch_fundamentals"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerYahoo, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerYahoo, op)

	var result *models.FinancialMetrics
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		fm, err := WithCircuitBreaker(ctx, BreakerYahoo, func() (*models.FinancialMetrics, error) {
			eq, err := equity.Get(symbol)
			if err != nil {
				return nil, NewStockDataError(KindServiceUnavailable, op, BreakerYahoo,
					fmt.Errorf("failed to get equity for %s: %w", symbol, err))
			}
			if eq == nil {
				return nil, NewStockDataError(KindDataNotFound, op, BreakerYahoo,
					fmt.Errorf("no equity data for %s", symbol))
			}

			fm := &models.FinancialMetrics{}
			if eq.MarketCap > 0 {
				fm.MarketCap = models.Float(float64(eq.MarketCap))
			}
			if eq.TrailingPE > 0 {
				fm.PERatio = models.Float(eq.TrailingPE)
			}
			if eq.PriceToBook > 0 {
				fm.PriceToBook = models.Float(eq.PriceToBook)
			}
			if eq.TrailingAnnualDividendYield > 0 {
				fm.DividendYield = models.Float(eq.TrailingAnnualDividendYield)
			}
			if eq.FiftyTwoWeekHigh > 0 {
				fm.FiftyTwoWeekHigh = models.Float(eq.FiftyTwoWeekHigh)
			}
			if eq.FiftyTwoWeekLow > 0 {
				fm.FiftyTwoWeekLow = models.Float(eq.FiftyTwoWeekLow)
			}
			if fm.IsEmpty() {
				return nil, NewStockDataError(KindDataNotFound, op, BreakerYahoo,
					fmt.Errorf("no fundamental fields for %s", symbol))
			}
			return fm, nil
		})
		if err != nil {
			return err
		}
		result = fm
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerYahoo, op, string(KindOf(err)))
		return nil, err
	}
	return result, nil
}

// GetEarnings returns earnings figures and the next earnings date.
// Yahoo exposes trailing and forward EPS on the equity payload rather
// than a per-quarter history, so the result is at most two entries.
func (s *YahooService) GetEarnings(ctx context.Context, symbol string) ([]models.EarningsEntry, *time.Time, error) {
	const op = "fetch_earnings"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerYahoo, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerYahoo, op)

	type earningsResult struct {
		entries []models.EarningsEntry
		next    *time.Time
	}

	var out earningsResult
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerYahoo, func() (earningsResult, error) {
			eq, err := equity.Get(symbol)
			if err != nil {
				return earningsResult{}, NewStockDataError(KindServiceUnavailable, op, BreakerYahoo,
					fmt.Errorf("failed to get equity for %s: %w", symbol, err))
			}
			if eq == nil {
				return earningsResult{}, NewStockDataError(KindDataNotFound, op, BreakerYahoo,
					fmt.Errorf("no equity data for %s", symbol))
			}

			var res earningsResult
			if eq.EpsTrailingTwelveMonths != 0 {
				res.entries = append(res.entries, models.EarningsEntry{
					EPSActual: models.Float(eq.EpsTrailingTwelveMonths),
					Quarter:   "TTM",
				})
			}
			if eq.EpsForward != 0 {
				res.entries = append(res.entries, models.EarningsEntry{
					EPSEstimate: models.Float(eq.EpsForward),
					Quarter:     "Forward",
				})
			}
			if eq.EarningsTimestamp > 0 {
				next := time.Unix(int64(eq.EarningsTimestamp), 0).UTC()
				res.next = &next
			}
			if len(res.entries) == 0 && res.next == nil {
				return earningsResult{}, NewStockDataError(KindDataNotFound, op, BreakerYahoo,
					fmt.Errorf("no earnings data for %s", symbol))
			}
			return res, nil
		})
		if err != nil {
			return err
		}
		out = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerYahoo, op, string(KindOf(err)))
		return nil, nil, err
	}
	return out.entries, out.next, nil
}

// GetCompanyName returns the long company name for a symbol
func (s *YahooService) GetCompanyName(ctx context.Context, symbol string) (string, error) {
	const op = "fetch_company"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerYahoo, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerYahoo, op)

	name, err := WithCircuitBreaker(ctx, BreakerYahoo, func() (string, error) {
		eq, err := equity.Get(symbol)
		if err != nil {
			return "", NewStockDataError(KindServiceUnavailable, op, BreakerYahoo,
				fmt.Errorf("failed to get equity for %s: %w", symbol, err))
		}
		if name := companyNameFromEquity(eq); name != "" {
			return name, nil
		}
		return "", NewStockDataError(KindDataNotFound, op, BreakerYahoo,
			fmt.Errorf("no company name for %s", symbol))
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerYahoo, op, string(KindOf(err)))
		return "", err
	}
	return name, nil
}

// companyNameFromEquity prefers the long name; only the equity payload
// carries it, the embedded quote has just the short name.
func companyNameFromEquity(eq *finance.Equity) string {
	if eq == nil {
		return ""
	}
	if eq.LongName != "" {
		return eq.LongName
	}
	return eq.ShortName
}
