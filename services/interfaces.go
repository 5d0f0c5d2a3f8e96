package services

import (
	"context"
	"time"

	"stockscope/models"
)

// PriceService fetches the latest price snapshot for a symbol.
type PriceService interface {
	GetPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
}

// FundamentalsService fetches financial metrics for a symbol.
type FundamentalsService interface {
	GetFundamentals(ctx context.Context, symbol string) (*models.FinancialMetrics, error)
}

// RatingsService fetches analyst recommendations for a symbol.
type RatingsService interface {
	GetAnalystRatings(ctx context.Context, symbol string) ([]models.AnalystRating, error)
}

// EarningsService fetches earnings history and the next earnings date.
type EarningsService interface {
	GetEarnings(ctx context.Context, symbol string) ([]models.EarningsEntry, *time.Time, error)
}

// CompanyService resolves a symbol to a company name.
type CompanyService interface {
	GetCompanyName(ctx context.Context, symbol string) (string, error)
}

// NewsService searches recent news for a query.
type NewsService interface {
	SearchNews(ctx context.Context, query string, daysBack, limit int) ([]models.NewsArticle, error)
}

// FeedService polls RSS feeds for articles mentioning a symbol.
type FeedService interface {
	FetchArticles(ctx context.Context, symbol string, terms []string, daysBack, limit int) ([]models.NewsArticle, error)
}

// LLMService is the shared interface for large language model providers.
type LLMService interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error
}

// Compile-time interface checks
var (
	_ PriceService        = (*AlphaVantageService)(nil)
	_ PriceService        = (*YahooService)(nil)
	_ PriceService        = (*AlpacaService)(nil)
	_ FundamentalsService = (*YahooService)(nil)
	_ FundamentalsService = (*FMPService)(nil)
	_ RatingsService      = (*FinnhubService)(nil)
	_ EarningsService     = (*YahooService)(nil)
	_ CompanyService      = (*YahooService)(nil)
	_ CompanyService      = (*FMPService)(nil)
	_ NewsService         = (*NewsAPIService)(nil)
	_ FeedService         = (*RSSService)(nil)
	_ LLMService          = (*OpenAIService)(nil)
	_ LLMService          = (*BedrockService)(nil)
)
