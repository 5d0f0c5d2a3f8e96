package services

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stockscope/models"
	"stockscope/observability"
)

// AlpacaService fetches market data from Alpaca. It is the last price
// source in the fallback chain: the latest trade carries no change or
// day statistics, only the last price and its size.
type AlpacaService struct {
	dataClient *marketdata.Client
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{
		dataClient: dataClient,
	}
}

// GetPrice returns the latest trade price for a symbol
func (s *AlpacaService) GetPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	const op = "fetch_price"
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerAlpaca, op)

	var snapshot *models.PriceSnapshot
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() (*models.PriceSnapshot, error) {
			trade, err := s.dataClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
			if err != nil {
				return nil, NewStockDataError(KindServiceUnavailable, op, BreakerAlpaca,
					fmt.Errorf("failed to get latest trade for %s: %w", symbol, err))
			}
			if trade == nil || trade.Price <= 0 {
				return nil, NewStockDataError(KindDataNotFound, op, BreakerAlpaca,
					fmt.Errorf("no trade data for %s", symbol))
			}

			return &models.PriceSnapshot{
				Price:    trade.Price,
				Currency: "USD",
				Volume:   int64(trade.Size),
				Source:   BreakerAlpaca,
			}, nil
		})
		if err != nil {
			return err
		}
		snapshot = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlpaca, op, string(KindOf(err)))
		return nil, err
	}
	return snapshot, nil
}
