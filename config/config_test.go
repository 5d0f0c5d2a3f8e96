package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 120*time.Second {
		t.Errorf("expected 120s request timeout, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Sentiment.NewsDaysBack != 7 {
		t.Errorf("expected 7 days back, got %d", cfg.Sentiment.NewsDaysBack)
	}
	if cfg.Sentiment.MaxNewsArticles != 20 {
		t.Errorf("expected 20 max articles, got %d", cfg.Sentiment.MaxNewsArticles)
	}
	if cfg.LLM.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default model, got %s", cfg.LLM.OpenAIModel)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("expected 1024 max tokens, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Clients.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s HTTP timeout, got %v", cfg.Clients.HTTPTimeout)
	}
	if cfg.Clients.MaxRetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.Clients.MaxRetryAttempts)
	}
	if cfg.Clients.RetryBaseDelay != 1*time.Second {
		t.Errorf("expected 1s retry base delay, got %v", cfg.Clients.RetryBaseDelay)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PRODUCTION", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("USE_LLM_SENTIMENT", "true")
	t.Setenv("NEWS_DAYS_BACK", "3")
	t.Setenv("HTTP_TIMEOUT", "10s")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_BASE_DELAY", "500ms")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Server.Production {
		t.Error("expected production mode")
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("expected origins trimmed and split, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Providers.AlphaVantageAPIKey != "av-key" {
		t.Errorf("expected av-key, got %s", cfg.Providers.AlphaVantageAPIKey)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider lowercased, got %s", cfg.LLM.Provider)
	}
	if !cfg.Sentiment.UseLLM {
		t.Error("expected LLM sentiment enabled")
	}
	if cfg.Sentiment.NewsDaysBack != 3 {
		t.Errorf("expected 3 days back, got %d", cfg.Sentiment.NewsDaysBack)
	}
	if cfg.Clients.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s HTTP timeout, got %v", cfg.Clients.HTTPTimeout)
	}
	if cfg.Clients.MaxRetryAttempts != 5 {
		t.Errorf("expected 5 retry attempts, got %d", cfg.Clients.MaxRetryAttempts)
	}
	if cfg.Clients.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms retry base delay, got %v", cfg.Clients.RetryBaseDelay)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Clients.HTTPTimeout != 30*time.Second {
		t.Errorf("expected fallback 30s HTTP timeout, got %v", cfg.Clients.HTTPTimeout)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != 8000 {
		t.Errorf("expected fallback port 8000, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "llama" }, true},
		{"openai without key", func(c *Config) { c.LLM.Provider = "openai" }, true},
		{"openai with key", func(c *Config) {
			c.LLM.Provider = "openai"
			c.LLM.OpenAIAPIKey = "sk-test"
		}, false},
		{"bedrock without model", func(c *Config) { c.LLM.Provider = "bedrock" }, true},
		{"bedrock with model", func(c *Config) {
			c.LLM.Provider = "bedrock"
			c.LLM.BedrockModelID = "anthropic.claude-3-haiku"
		}, false},
		{"llm sentiment without provider", func(c *Config) { c.Sentiment.UseLLM = true }, true},
		{"zero http timeout", func(c *Config) { c.Clients.HTTPTimeout = 0 }, true},
		{"zero retry attempts", func(c *Config) { c.Clients.MaxRetryAttempts = 0 }, true},
		{"zero retry base delay", func(c *Config) { c.Clients.RetryBaseDelay = 0 }, true},
		{"zero days back", func(c *Config) { c.Sentiment.NewsDaysBack = 0 }, true},
		{"zero max articles", func(c *Config) { c.Sentiment.MaxNewsArticles = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
