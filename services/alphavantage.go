package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockscope/models"
	"stockscope/observability"
)

// AlphaVantageService handles communication with the Alpha Vantage API
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// globalQuoteResponse represents the GLOBAL_QUOTE payload. Alpha Vantage
// multiplexes errors into the same 200 response: "Error Message" for bad
// symbols, "Note"/"Information" for rate limiting, and an empty quote
// object when no data exists.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// GetPrice returns the latest price snapshot for a symbol
func (s *AlphaVantageService) GetPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	const op = "fetch_price"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlphaVantage, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerAlphaVantage, op)

	var snapshot *models.PriceSnapshot
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.PriceSnapshot, error) {
			return s.fetchGlobalQuote(ctx, symbol)
		})
		if err != nil {
			return err
		}
		snapshot = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlphaVantage, op, string(KindOf(err)))
		return nil, err
	}
	return snapshot, nil
}

func (s *AlphaVantageService) fetchGlobalQuote(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	const op = "fetch_price"

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerAlphaVantage, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, BreakerAlphaVantage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, NewStockDataError(KindServiceUnavailable, op, BreakerAlphaVantage,
			fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewStockDataError(KindRateLimited, op, BreakerAlphaVantage,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var quoteResp globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerAlphaVantage,
			fmt.Errorf("failed to decode quote: %w", err))
	}

	if quoteResp.ErrorMessage != "" {
		return nil, NewStockDataError(KindInvalidSymbol, op, BreakerAlphaVantage,
			fmt.Errorf("%s", quoteResp.ErrorMessage))
	}
	if quoteResp.Note != "" || quoteResp.Information != "" {
		msg := quoteResp.Note
		if msg == "" {
			msg = quoteResp.Information
		}
		return nil, NewStockDataError(KindRateLimited, op, BreakerAlphaVantage,
			fmt.Errorf("%s", msg))
	}
	if quoteResp.GlobalQuote.Price == "" {
		return nil, NewStockDataError(KindDataNotFound, op, BreakerAlphaVantage,
			fmt.Errorf("empty quote for %s", symbol))
	}

	price, err := decimal.NewFromString(quoteResp.GlobalQuote.Price)
	if err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerAlphaVantage,
			fmt.Errorf("failed to parse price %q: %w", quoteResp.GlobalQuote.Price, err))
	}

	change, _ := decimal.NewFromString(quoteResp.GlobalQuote.Change)
	changePct, _ := decimal.NewFromString(strings.TrimSuffix(quoteResp.GlobalQuote.ChangePercent, "%"))

	var volume int64
	if quoteResp.GlobalQuote.Volume != "" {
		volume, err = strconv.ParseInt(quoteResp.GlobalQuote.Volume, 10, 64)
		if err != nil {
			observability.Warn("failed to parse volume",
				"volume", quoteResp.GlobalQuote.Volume,
				"error", err)
		}
	}

	priceF, _ := price.Float64()
	changeF, _ := change.Float64()
	changePctF, _ := changePct.Float64()

	return &models.PriceSnapshot{
		Price:         priceF,
		Currency:      "USD",
		Change:        changeF,
		ChangePercent: changePctF,
		Volume:        volume,
		Source:        BreakerAlphaVantage,
	}, nil
}

// classifyTransportError maps net/http client errors onto the error
// taxonomy: deadline problems become timeouts, everything else is
// treated as the provider being unreachable.
func classifyTransportError(op, source string, err error) *StockDataError {
	if strings.Contains(err.Error(), "context deadline exceeded") ||
		strings.Contains(err.Error(), "Client.Timeout") {
		return NewStockDataError(KindTimeout, op, source, err)
	}
	return NewStockDataError(KindServiceUnavailable, op, source, err)
}
