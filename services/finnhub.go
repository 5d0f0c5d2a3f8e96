package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stockscope/models"
	"stockscope/observability"
)

// FinnhubService handles communication with the Finnhub API
type FinnhubService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFinnhubService creates a new FinnhubService instance
func NewFinnhubService(apiKey string) *FinnhubService {
	return &FinnhubService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		baseURL:    "https://finnhub.io/api/v1",
	}
}

// recommendationTrend is one monthly recommendation aggregate from Finnhub
type recommendationTrend struct {
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongBuy  int    `json:"strongBuy"`
	StrongSell int    `json:"strongSell"`
	Period     string `json:"period"`
	Symbol     string `json:"symbol"`
}

// GetAnalystRatings returns analyst recommendation trends for a symbol.
// Finnhub aggregates per month rather than per firm, so each entry is
// reported under a synthetic "Consensus" firm with the dominant action
// as the rating and the raw counts preserved in the rating text.
func (s *FinnhubService) GetAnalystRatings(ctx context.Context, symbol string) ([]models.AnalystRating, error) {
	const op = "fetch_ratings"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinnhub, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerFinnhub, op)

	var ratings []models.AnalystRating
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerFinnhub, func() ([]models.AnalystRating, error) {
			return s.fetchRecommendations(ctx, symbol)
		})
		if err != nil {
			return err
		}
		ratings = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinnhub, op, string(KindOf(err)))
		return nil, err
	}
	return ratings, nil
}

func (s *FinnhubService) fetchRecommendations(ctx context.Context, symbol string) ([]models.AnalystRating, error) {
	const op = "fetch_ratings"

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/stock/recommendation?"+params.Encode(), nil)
	if err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerFinnhub, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, BreakerFinnhub, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewStockDataError(KindRateLimited, op, BreakerFinnhub,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, NewStockDataError(KindServiceUnavailable, op, BreakerFinnhub,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, NewStockDataError(KindInternal, op, BreakerFinnhub,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var trends []recommendationTrend
	if err := json.NewDecoder(resp.Body).Decode(&trends); err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerFinnhub,
			fmt.Errorf("failed to decode recommendations: %w", err))
	}

	if len(trends) == 0 {
		return nil, NewStockDataError(KindDataNotFound, op, BreakerFinnhub,
			fmt.Errorf("no recommendations for %s", symbol))
	}

	ratings := make([]models.AnalystRating, 0, len(trends))
	for _, t := range trends {
		rating := models.AnalystRating{
			Firm:   "Consensus",
			Rating: trendRating(t),
		}
		if date, err := time.Parse("2006-01-02", t.Period); err == nil {
			rating.Date = &date
		}
		ratings = append(ratings, rating)
	}

	return ratings, nil
}

// trendRating reduces a monthly aggregate to a single rating string.
// Strong counts fold into their base action before comparison.
func trendRating(t recommendationTrend) string {
	buy := t.Buy + t.StrongBuy
	sell := t.Sell + t.StrongSell

	switch {
	case buy > t.Hold && buy > sell:
		return fmt.Sprintf("Buy (%d buy, %d hold, %d sell)", buy, t.Hold, sell)
	case sell > t.Hold && sell > buy:
		return fmt.Sprintf("Sell (%d buy, %d hold, %d sell)", buy, t.Hold, sell)
	default:
		return fmt.Sprintf("Hold (%d buy, %d hold, %d sell)", buy, t.Hold, sell)
	}
}
