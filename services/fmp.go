package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"stockscope/models"
	"stockscope/observability"
)

// FMPService handles communication with the Financial Modeling Prep API.
// It serves as the secondary source for company profiles and ratios.
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance
func NewFMPService(apiKey string) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		baseURL:    "https://financialmodelingprep.com/api/v3",
	}
}

// companyProfile is the FMP /profile payload (one element per symbol)
type companyProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Currency    string  `json:"currency"`
	MktCap      float64 `json:"mktCap"`
	Beta        float64 `json:"beta"`
	LastDiv     float64 `json:"lastDiv"`
	Price       float64 `json:"price"`
}

// GetCompanyName returns the registered company name for a symbol
func (s *FMPService) GetCompanyName(ctx context.Context, symbol string) (string, error) {
	const op = "fetch_company"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerFMP, op)

	var name string
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		profile, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*companyProfile, error) {
			return s.fetchProfile(ctx, symbol)
		})
		if err != nil {
			return err
		}
		name = profile.CompanyName
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, op, string(KindOf(err)))
		return "", err
	}
	return name, nil
}

// GetFundamentals returns the profile-level metrics FMP exposes.
// The profile carries only market cap and beta; richer ratios come
// from the primary fundamentals source.
func (s *FMPService) GetFundamentals(ctx context.Context, symbol string) (*models.FinancialMetrics, error) {
	const op = "fetch_fundamentals"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFMP, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerFMP, op)

	var fm *models.FinancialMetrics
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		profile, err := WithCircuitBreaker(ctx, BreakerFMP, func() (*companyProfile, error) {
			return s.fetchProfile(ctx, symbol)
		})
		if err != nil {
			return err
		}

		fm = &models.FinancialMetrics{}
		if profile.MktCap > 0 {
			fm.MarketCap = models.Float(profile.MktCap)
		}
		if profile.Beta != 0 {
			fm.Beta = models.Float(profile.Beta)
		}
		if fm.IsEmpty() {
			return NewStockDataError(KindDataNotFound, op, BreakerFMP,
				fmt.Errorf("no fundamental fields for %s", symbol))
		}
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerFMP, op, string(KindOf(err)))
		return nil, err
	}
	return fm, nil
}

func (s *FMPService) fetchProfile(ctx context.Context, symbol string) (*companyProfile, error) {
	const op = "fetch_company"

	params := url.Values{}
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/profile/"+url.PathEscape(symbol)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerFMP, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, BreakerFMP, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewStockDataError(KindRateLimited, op, BreakerFMP,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, NewStockDataError(KindServiceUnavailable, op, BreakerFMP,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, NewStockDataError(KindInternal, op, BreakerFMP,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var profiles []companyProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerFMP,
			fmt.Errorf("failed to decode profile: %w", err))
	}

	if len(profiles) == 0 || profiles[0].CompanyName == "" {
		return nil, NewStockDataError(KindDataNotFound, op, BreakerFMP,
			fmt.Errorf("no profile for %s", symbol))
	}

	return &profiles[0], nil
}
