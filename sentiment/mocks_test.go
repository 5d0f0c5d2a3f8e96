package sentiment

import (
	"context"
	"encoding/json"

	"stockscope/models"
)

// mockLLMService implements services.LLMService for testing
type mockLLMService struct {
	response  string
	err       error
	callCount int
}

func (m *mockLLMService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.callCount++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error {
	text, err := m.InvokeWithPrompt(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), result)
}

// mockNewsService implements services.NewsService for testing
type mockNewsService struct {
	articles  []models.NewsArticle
	err       error
	lastQuery string
}

func (m *mockNewsService) SearchNews(ctx context.Context, query string, daysBack, limit int) ([]models.NewsArticle, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

// mockFeedService implements services.FeedService for testing
type mockFeedService struct {
	articles  []models.NewsArticle
	err       error
	lastTerms []string
}

func (m *mockFeedService) FetchArticles(ctx context.Context, symbol string, terms []string, daysBack, limit int) ([]models.NewsArticle, error) {
	m.lastTerms = terms
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}
