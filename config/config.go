package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, loaded from environment
// variables. API keys are optional individually; Validate enforces
// that at least one price source is usable.
type Config struct {
	Server    ServerConfig
	Clients   ClientsConfig
	Providers ProvidersConfig
	LLM       LLMConfig
	Sentiment SentimentConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int
	Production     bool
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// ClientsConfig tunes outbound HTTP clients and the retry wrapper
type ClientsConfig struct {
	HTTPTimeout      time.Duration
	MaxRetryAttempts int
	RetryBaseDelay   time.Duration
}

// ProvidersConfig holds external data provider credentials
type ProvidersConfig struct {
	AlphaVantageAPIKey string
	FinnhubAPIKey      string
	NewsAPIKey         string
	FMPAPIKey          string
	AlpacaAPIKey       string
	AlpacaAPISecret    string
	RSSFeeds           []string
}

// LLMConfig selects and configures the LLM provider
type LLMConfig struct {
	Provider       string // "openai", "bedrock" or "" (disabled)
	OpenAIAPIKey   string
	OpenAIModel    string
	AWSRegion      string
	BedrockModelID string
	MaxTokens      int
}

// SentimentConfig tunes the sentiment pipeline
type SentimentConfig struct {
	NewsDaysBack    int
	MaxNewsArticles int
	UseLLM          bool
}

// Load reads configuration from the environment
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8000),
			Production:     getEnvBool("PRODUCTION", false),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
			RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Clients: ClientsConfig{
			HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
			MaxRetryAttempts: getEnvInt("MAX_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:   getEnvDuration("RETRY_BASE_DELAY", 1*time.Second),
		},
		Providers: ProvidersConfig{
			AlphaVantageAPIKey: getEnvString("ALPHA_VANTAGE_API_KEY", ""),
			FinnhubAPIKey:      getEnvString("FINNHUB_API_KEY", ""),
			NewsAPIKey:         getEnvString("NEWS_API_KEY", ""),
			FMPAPIKey:          getEnvString("FMP_API_KEY", ""),
			AlpacaAPIKey:       getEnvString("ALPACA_API_KEY", ""),
			AlpacaAPISecret:    getEnvString("ALPACA_API_SECRET", ""),
			RSSFeeds:           getEnvList("RSS_FEEDS", nil),
		},
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnvString("LLM_PROVIDER", "")),
			OpenAIAPIKey:   getEnvString("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnvString("OPENAI_MODEL", "gpt-4o-mini"),
			AWSRegion:      getEnvString("AWS_REGION", "us-east-1"),
			BedrockModelID: getEnvString("BEDROCK_MODEL_ID", ""),
			MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 1024),
		},
		Sentiment: SentimentConfig{
			NewsDaysBack:    getEnvInt("NEWS_DAYS_BACK", 7),
			MaxNewsArticles: getEnvInt("MAX_NEWS_ARTICLES", 20),
			UseLLM:          getEnvBool("USE_LLM_SENTIMENT", false),
		},
	}
}

// Validate checks the configuration for fatal problems
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Clients.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Clients.HTTPTimeout)
	}
	if c.Clients.MaxRetryAttempts < 1 {
		return fmt.Errorf("MAX_RETRY_ATTEMPTS must be at least 1, got %d", c.Clients.MaxRetryAttempts)
	}
	if c.Clients.RetryBaseDelay <= 0 {
		return fmt.Errorf("RETRY_BASE_DELAY must be positive, got %v", c.Clients.RetryBaseDelay)
	}

	switch c.LLM.Provider {
	case "", "openai", "bedrock":
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'openai', 'bedrock' or unset, got %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	if c.LLM.Provider == "bedrock" && c.LLM.BedrockModelID == "" {
		return fmt.Errorf("BEDROCK_MODEL_ID is required when LLM_PROVIDER=bedrock")
	}
	if c.Sentiment.UseLLM && c.LLM.Provider == "" {
		return fmt.Errorf("USE_LLM_SENTIMENT requires LLM_PROVIDER to be set")
	}

	if c.Sentiment.NewsDaysBack <= 0 {
		return fmt.Errorf("NEWS_DAYS_BACK must be positive, got %d", c.Sentiment.NewsDaysBack)
	}
	if c.Sentiment.MaxNewsArticles <= 0 {
		return fmt.Errorf("MAX_NEWS_ARTICLES must be positive, got %d", c.Sentiment.MaxNewsArticles)
	}

	return nil
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8000,
			AllowedOrigins: []string{"*"},
			RequestTimeout: 10 * time.Second,
		},
		Clients: ClientsConfig{
			HTTPTimeout:      5 * time.Second,
			MaxRetryAttempts: 3,
			RetryBaseDelay:   10 * time.Millisecond,
		},
		Providers: ProvidersConfig{
			AlphaVantageAPIKey: "test-alpha-key",
			FinnhubAPIKey:      "test-finnhub-key",
			NewsAPIKey:         "test-news-key",
		},
		LLM: LLMConfig{
			OpenAIModel: "gpt-4o-mini",
			AWSRegion:   "us-east-1",
			MaxTokens:   256,
		},
		Sentiment: SentimentConfig{
			NewsDaysBack:    7,
			MaxNewsArticles: 20,
		},
	}
}

func getEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
