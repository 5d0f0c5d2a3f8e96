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

// NewsAPIService handles communication with NewsAPI.org
type NewsAPIService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewNewsAPIService creates a new NewsAPIService instance
func NewNewsAPIService(apiKey string) *NewsAPIService {
	return &NewsAPIService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
		baseURL:    "https://newsapi.org/v2",
	}
}

// newsAPIResponse represents the response from NewsAPI
type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// SearchNews returns articles matching the query published within the
// last daysBack days, newest first.
func (s *NewsAPIService) SearchNews(ctx context.Context, query string, daysBack, limit int) ([]models.NewsArticle, error) {
	const op = "fetch_news"
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if daysBack <= 0 {
		daysBack = 7
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerNewsAPI, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerNewsAPI, op)

	var articles []models.NewsArticle
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		result, err := WithCircuitBreaker(ctx, BreakerNewsAPI, func() ([]models.NewsArticle, error) {
			return s.fetchEverything(ctx, query, daysBack, limit)
		})
		if err != nil {
			return err
		}
		articles = result
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerNewsAPI, op, string(KindOf(err)))
		return nil, err
	}
	return articles, nil
}

func (s *NewsAPIService) fetchEverything(ctx context.Context, query string, daysBack, limit int) ([]models.NewsArticle, error) {
	const op = "fetch_news"

	from := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("from", from)
	params.Set("pageSize", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerNewsAPI, err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, BreakerNewsAPI, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewStockDataError(KindRateLimited, op, BreakerNewsAPI,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, NewStockDataError(KindServiceUnavailable, op, BreakerNewsAPI,
			fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, NewStockDataError(KindInternal, op, BreakerNewsAPI,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var newsResp newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&newsResp); err != nil {
		return nil, NewStockDataError(KindInternal, op, BreakerNewsAPI,
			fmt.Errorf("failed to decode response: %w", err))
	}

	if newsResp.Status != "ok" {
		kind := KindInternal
		if newsResp.Code == "rateLimited" {
			kind = KindRateLimited
		}
		return nil, NewStockDataError(kind, op, BreakerNewsAPI,
			fmt.Errorf("%s: %s", newsResp.Code, newsResp.Message))
	}

	articles := make([]models.NewsArticle, 0, len(newsResp.Articles))
	for _, item := range newsResp.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			observability.Warn("failed to parse article timestamp, using current time",
				"published_at", item.PublishedAt,
				"error", err)
			publishedAt = time.Now()
		}

		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			Source:      item.Source.Name,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}
