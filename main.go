package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockscope/agents"
	"stockscope/config"
	"stockscope/observability"
	"stockscope/sentiment"
	"stockscope/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	observability.InitLogger(cfg.Server.Production)
	observability.InitMetrics()

	if err := cfg.Validate(); err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	services.ApplyClientSettings(services.ClientSettings{
		HTTPTimeout:      cfg.Clients.HTTPTimeout,
		MaxRetryAttempts: cfg.Clients.MaxRetryAttempts,
		RetryBaseDelay:   cfg.Clients.RetryBaseDelay,
	})

	ctx := context.Background()
	coordinator := buildCoordinator(ctx, cfg)
	handler := NewAPIHandler(coordinator, cfg)
	router := NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	go func() {
		observability.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	observability.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("shutdown error", "error", err)
	}
}

// buildCoordinator wires providers into agents based on what the
// configuration enables. Missing credentials shrink the fallback
// chains instead of failing startup; only a service with zero usable
// price sources is a fatal misconfiguration.
func buildCoordinator(ctx context.Context, cfg *config.Config) *agents.Coordinator {
	yahoo := services.NewYahooService()

	// Price chain: Alpha Vantage first, Yahoo always, Alpaca last.
	var priceProviders []agents.PriceProvider
	if cfg.Providers.AlphaVantageAPIKey != "" {
		priceProviders = append(priceProviders, agents.PriceProvider{
			Name:    services.BreakerAlphaVantage,
			Service: services.NewAlphaVantageService(cfg.Providers.AlphaVantageAPIKey),
		})
	} else {
		observability.Warn("Alpha Vantage API key not set, primary price source disabled")
	}
	priceProviders = append(priceProviders, agents.PriceProvider{
		Name:    services.BreakerYahoo,
		Service: yahoo,
	})
	if cfg.Providers.AlpacaAPIKey != "" && cfg.Providers.AlpacaAPISecret != "" {
		priceProviders = append(priceProviders, agents.PriceProvider{
			Name:    services.BreakerAlpaca,
			Service: services.NewAlpacaService(cfg.Providers.AlpacaAPIKey, cfg.Providers.AlpacaAPISecret),
		})
	} else {
		observability.Warn("Alpaca credentials not set, last price fallback disabled")
	}

	// Fundamentals chain: Yahoo first, FMP profile as backstop.
	fundamentalsProviders := []agents.FundamentalsProvider{
		{Name: services.BreakerYahoo, Service: yahoo},
	}
	companyProviders := []agents.CompanyProvider{
		{Name: services.BreakerYahoo, Service: yahoo},
	}
	if cfg.Providers.FMPAPIKey != "" {
		fmp := services.NewFMPService(cfg.Providers.FMPAPIKey)
		fundamentalsProviders = append(fundamentalsProviders,
			agents.FundamentalsProvider{Name: services.BreakerFMP, Service: fmp})
		companyProviders = append(companyProviders,
			agents.CompanyProvider{Name: services.BreakerFMP, Service: fmp})
	} else {
		observability.Warn("FMP API key not set, secondary fundamentals source disabled")
	}

	// Analyst data
	var ratings services.RatingsService
	if cfg.Providers.FinnhubAPIKey != "" {
		ratings = services.NewFinnhubService(cfg.Providers.FinnhubAPIKey)
	} else {
		observability.Warn("Finnhub API key not set, analyst ratings disabled")
	}

	// Sentiment pipeline
	var news services.NewsService
	if cfg.Providers.NewsAPIKey != "" {
		news = services.NewNewsAPIService(cfg.Providers.NewsAPIKey)
	} else {
		observability.Warn("NewsAPI key not set, keyword news search disabled")
	}
	feeds := services.NewRSSService(cfg.Providers.RSSFeeds)

	llm := buildLLM(ctx, cfg)

	aggregator := sentiment.NewAggregator(news, feeds, llm, sentiment.AggregatorConfig{
		DaysBack:    cfg.Sentiment.NewsDaysBack,
		MaxArticles: cfg.Sentiment.MaxNewsArticles,
		UseLLM:      cfg.Sentiment.UseLLM && llm != nil,
	})

	return agents.NewCoordinator(
		agents.NewPriceAgent(priceProviders...),
		agents.NewFundamentalsAgent(fundamentalsProviders...),
		agents.NewAnalystAgent(ratings, yahoo),
		agents.NewSentimentAgent(aggregator),
		agents.NewCompanyAgent(companyProviders...),
	)
}

// buildLLM constructs the configured LLM provider, or nil when disabled
func buildLLM(ctx context.Context, cfg *config.Config) services.LLMService {
	switch cfg.LLM.Provider {
	case "openai":
		svc, err := services.NewOpenAIService(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel, cfg.LLM.MaxTokens)
		if err != nil {
			observability.Warn("failed to initialize OpenAI, LLM features disabled", "error", err)
			return nil
		}
		return svc
	case "bedrock":
		svc, err := services.NewBedrockService(ctx, cfg.LLM.AWSRegion, cfg.LLM.BedrockModelID, cfg.LLM.MaxTokens)
		if err != nil {
			observability.Warn("failed to initialize Bedrock, LLM features disabled", "error", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}
