package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stockscope/models"
)

func article(title, source string, age time.Duration) models.NewsArticle {
	return models.NewsArticle{
		Title:       title,
		Description: "",
		URL:         "https://example.com/" + source,
		Source:      source,
		PublishedAt: time.Now().Add(-age),
	}
}

func TestAggregator_Analyze_NoArticles(t *testing.T) {
	agg := NewAggregator(
		&mockNewsService{},
		&mockFeedService{},
		nil,
		AggregatorConfig{},
	)

	items, summary := agg.Analyze(context.Background(), "AAPL", "Apple")
	if items != nil {
		t.Errorf("expected nil items, got %d", len(items))
	}
	if summary == nil {
		t.Fatal("expected neutral summary, got nil")
	}
	if summary.OverallLabel != models.SentimentNeutral {
		t.Errorf("expected neutral label, got %s", summary.OverallLabel)
	}
	if summary.SummaryText != "No sentiment data available" {
		t.Errorf("unexpected summary text: %s", summary.SummaryText)
	}
}

func TestAggregator_Analyze_MergesAndScores(t *testing.T) {
	news := &mockNewsService{articles: []models.NewsArticle{
		article("Apple stock surged to record gains after strong earnings", "newsapi", time.Hour),
	}}
	feeds := &mockFeedService{articles: []models.NewsArticle{
		article("Apple shares plunged on disappointing losses", "rss", 2*time.Hour),
	}}

	agg := NewAggregator(news, feeds, nil, AggregatorConfig{})
	items, summary := agg.Analyze(context.Background(), "AAPL", "Apple")

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Sorted newest first
	if items[0].Source != "newsapi" {
		t.Errorf("expected newest article first, got source %s", items[0].Source)
	}
	if items[0].Polarity <= 0 {
		t.Errorf("expected positive polarity for first item, got %f", items[0].Polarity)
	}
	if items[1].Polarity >= 0 {
		t.Errorf("expected negative polarity for second item, got %f", items[1].Polarity)
	}
	if summary.PositiveCount != 1 || summary.NegativeCount != 1 {
		t.Errorf("expected 1 positive and 1 negative, got %d/%d",
			summary.PositiveCount, summary.NegativeCount)
	}
	if !strings.Contains(summary.SummaryText, "Based on 2 articles") {
		t.Errorf("expected counts template, got: %s", summary.SummaryText)
	}
}

func TestAggregator_Analyze_DeduplicatesTitles(t *testing.T) {
	// Same title modulo punctuation and case collapses to one article
	news := &mockNewsService{articles: []models.NewsArticle{
		article("Apple Beats Earnings Expectations!", "newsapi", time.Hour),
	}}
	feeds := &mockFeedService{articles: []models.NewsArticle{
		article("apple beats earnings expectations", "rss", 2*time.Hour),
	}}

	agg := NewAggregator(news, feeds, nil, AggregatorConfig{})
	items, _ := agg.Analyze(context.Background(), "AAPL", "Apple")

	if len(items) != 1 {
		t.Fatalf("expected duplicate collapsed, got %d items", len(items))
	}
	if items[0].Source != "newsapi" {
		t.Errorf("expected first occurrence kept, got %s", items[0].Source)
	}
}

func TestAggregator_Analyze_SourceFailureTolerated(t *testing.T) {
	news := &mockNewsService{err: errors.New("newsapi down")}
	feeds := &mockFeedService{articles: []models.NewsArticle{
		article("Apple stock surged to record gains", "rss", time.Hour),
	}}

	agg := NewAggregator(news, feeds, nil, AggregatorConfig{})
	items, summary := agg.Analyze(context.Background(), "AAPL", "Apple")

	if len(items) != 1 {
		t.Fatalf("expected surviving source used, got %d items", len(items))
	}
	if summary == nil {
		t.Fatal("expected summary, got nil")
	}
}

func TestAggregator_Analyze_CapsArticles(t *testing.T) {
	var articles []models.NewsArticle
	titles := []string{
		"Apple launches new product line today",
		"Analysts weigh in on Apple guidance",
		"Apple supply chain report released",
		"Apple retail expansion continues abroad",
		"Apple services revenue in focus",
	}
	for i, title := range titles {
		articles = append(articles, article(title, "newsapi", time.Duration(i)*time.Hour))
	}

	agg := NewAggregator(&mockNewsService{articles: articles}, nil, nil,
		AggregatorConfig{MaxArticles: 3})
	items, _ := agg.Analyze(context.Background(), "AAPL", "Apple")

	if len(items) != 3 {
		t.Errorf("expected cap of 3, got %d items", len(items))
	}
}

func TestAggregator_Analyze_QueryFromTerms(t *testing.T) {
	news := &mockNewsService{}
	feeds := &mockFeedService{}
	agg := NewAggregator(news, feeds, nil, AggregatorConfig{})

	agg.Analyze(context.Background(), "AAPL", "")

	if news.lastQuery != "AAPL OR Apple" {
		t.Errorf("expected terms joined with OR, got %q", news.lastQuery)
	}
	if len(feeds.lastTerms) != 2 || feeds.lastTerms[1] != "Apple" {
		t.Errorf("expected terms passed to feeds, got %v", feeds.lastTerms)
	}
}

func TestAggregator_Synopsis_LLM(t *testing.T) {
	var articles []models.NewsArticle
	titles := []string{
		"Apple stock surged on strong results",
		"Apple beats revenue expectations again",
		"Apple announces record buyback program",
		"Apple guidance impresses analysts broadly",
	}
	for i, title := range titles {
		articles = append(articles, article(title, "newsapi", time.Duration(i)*time.Hour))
	}

	llm := &mockLLMService{response: "Coverage is broadly positive, driven by earnings strength."}
	agg := NewAggregator(&mockNewsService{articles: articles}, nil, llm,
		AggregatorConfig{UseLLM: true})
	_, summary := agg.Analyze(context.Background(), "AAPL", "Apple")

	if summary.SummaryText != "Coverage is broadly positive, driven by earnings strength." {
		t.Errorf("expected LLM synopsis, got: %s", summary.SummaryText)
	}
}

func TestAggregator_Synopsis_LLMFailureFallsBack(t *testing.T) {
	var articles []models.NewsArticle
	titles := []string{
		"Apple stock surged on strong results",
		"Apple beats revenue expectations again",
		"Apple announces record buyback program",
		"Apple guidance impresses analysts broadly",
	}
	for i, title := range titles {
		articles = append(articles, article(title, "newsapi", time.Duration(i)*time.Hour))
	}

	llm := &mockLLMService{err: errors.New("provider down")}
	agg := NewAggregator(&mockNewsService{articles: articles}, nil, llm,
		AggregatorConfig{UseLLM: true})
	_, summary := agg.Analyze(context.Background(), "AAPL", "Apple")

	if !strings.Contains(summary.SummaryText, "Based on 4 articles") {
		t.Errorf("expected counts template fallback, got: %s", summary.SummaryText)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips punctuation", "Apple, Inc. beats!", "apple inc beats"},
		{"lowercases", "APPLE BEATS", "apple beats"},
		{
			"truncates to 50",
			strings.Repeat("a", 60),
			strings.Repeat("a", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTitle(tt.in); got != tt.want {
				t.Errorf("normalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
