package sentiment

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"stockscope/models"
	"stockscope/observability"
	"stockscope/services"
)

// AggregatorConfig tunes the corpus window and size.
type AggregatorConfig struct {
	DaysBack    int // lookback window for articles
	MaxArticles int // cap applied after deduplication
	UseLLM      bool
}

// DefaultAggregatorConfig matches the production defaults.
var DefaultAggregatorConfig = AggregatorConfig{
	DaysBack:    7,
	MaxArticles: 20,
}

// Aggregator gathers news from every configured source, deduplicates
// it, scores each article and reduces the corpus to a summary.
type Aggregator struct {
	news   services.NewsService // nil when no NewsAPI key configured
	feeds  services.FeedService
	scorer *Scorer
	llm    services.LLMService // used for the corpus synopsis
	config AggregatorConfig
}

// NewAggregator creates an Aggregator. news, feeds and llm may each be
// nil; the aggregator degrades to whatever sources remain.
func NewAggregator(news services.NewsService, feeds services.FeedService, llm services.LLMService, config AggregatorConfig) *Aggregator {
	if config.DaysBack <= 0 {
		config.DaysBack = DefaultAggregatorConfig.DaysBack
	}
	if config.MaxArticles <= 0 {
		config.MaxArticles = DefaultAggregatorConfig.MaxArticles
	}

	var scorerLLM services.LLMService
	if config.UseLLM {
		scorerLLM = llm
	}

	return &Aggregator{
		news:   news,
		feeds:  feeds,
		scorer: NewScorer(scorerLLM),
		llm:    llm,
		config: config,
	}
}

// Analyze fetches, deduplicates and scores recent coverage of symbol.
// Source failures are logged and tolerated; only a completely empty
// corpus produces the neutral "no data" summary.
func (a *Aggregator) Analyze(ctx context.Context, symbol, companyName string) ([]models.SentimentItem, *models.SentimentSummary) {
	terms := QueryTerms(symbol, companyName)

	var articles []models.NewsArticle

	if a.news != nil {
		query := strings.Join(terms, " OR ")
		fetched, err := a.news.SearchNews(ctx, query, a.config.DaysBack, a.config.MaxArticles)
		if err != nil {
			observability.Warn("NewsAPI fetch failed",
				"symbol", symbol,
				"error", err)
		} else {
			articles = append(articles, fetched...)
		}
	}

	if a.feeds != nil {
		fetched, err := a.feeds.FetchArticles(ctx, symbol, terms, a.config.DaysBack, a.config.MaxArticles)
		if err != nil {
			observability.Warn("RSS fetch failed",
				"symbol", symbol,
				"error", err)
		} else {
			articles = append(articles, fetched...)
		}
	}

	if len(articles) == 0 {
		return nil, models.NewNeutralSummary("No sentiment data available")
	}

	unique := dedupByTitle(articles)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PublishedAt.After(unique[j].PublishedAt)
	})
	if len(unique) > a.config.MaxArticles {
		unique = unique[:a.config.MaxArticles]
	}

	items := make([]models.SentimentItem, 0, len(unique))
	for _, article := range unique {
		text := strings.TrimSpace(article.Title + ". " + article.Description)
		polarity := a.scorer.Score(ctx, text)

		publishedAt := article.PublishedAt
		items = append(items, models.SentimentItem{
			Source:      article.Source,
			Title:       article.Title,
			Polarity:    polarity,
			Label:       models.LabelForPolarity(polarity),
			PublishedAt: &publishedAt,
			URL:         article.URL,
		})
	}

	summary := a.summarize(ctx, symbol, items)
	return items, summary
}

func (a *Aggregator) summarize(ctx context.Context, symbol string, items []models.SentimentItem) *models.SentimentSummary {
	if len(items) == 0 {
		return models.NewNeutralSummary("Failed to analyze sentiment")
	}

	polarities := make([]float64, len(items))
	for i, item := range items {
		polarities[i] = item.Polarity
	}

	avg := mean(polarities)

	var positive, negative int
	for _, p := range polarities {
		switch {
		case p > 0.15:
			positive++
		case p < -0.15:
			negative++
		}
	}
	neutral := len(polarities) - positive - negative

	// Agreement between sources drives confidence: a tight cluster of
	// polarities is trustworthy, a wide spread is not.
	confidence := 1 - sampleStdev(polarities)/2
	if confidence < 0 {
		confidence = 0
	}

	summaryText := a.synopsis(ctx, symbol, items, avg, positive, negative, neutral)

	return &models.SentimentSummary{
		OverallLabel:  models.LabelForPolarity(avg),
		Confidence:    confidence,
		PositiveCount: positive,
		NegativeCount: negative,
		NeutralCount:  neutral,
		SummaryText:   summaryText,
	}
}

const synopsisSystemPrompt = `You are a financial analyst summarizing news coverage for investors. ` +
	`Write 2-3 concise sentences covering the key themes, sentiment drivers and potential implications. Max 150 words.`

// synopsis produces the human-readable summary line. The LLM is used
// only for corpora large enough to have themes worth summarizing;
// otherwise, and whenever the LLM fails, a counts template is used.
func (a *Aggregator) synopsis(ctx context.Context, symbol string, items []models.SentimentItem, avg float64, positive, negative, neutral int) string {
	if a.config.UseLLM && a.llm != nil && len(items) > 3 {
		titles := make([]string, 0, len(items))
		for _, item := range items {
			titles = append(titles, fmt.Sprintf("- %s (polarity %.2f)", item.Title, item.Polarity))
		}
		userPrompt := fmt.Sprintf("Recent coverage of %s (average polarity %.2f):\n%s",
			symbol, avg, strings.Join(titles, "\n"))

		text, err := a.llm.InvokeWithPrompt(ctx, synopsisSystemPrompt, userPrompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		observability.Warn("LLM synopsis failed, using counts template",
			"symbol", symbol,
			"error", err)
	}

	base := fmt.Sprintf("Based on %d articles: ", len(items))
	switch {
	case positive > negative:
		return base + fmt.Sprintf("Generally positive sentiment (%d positive, %d negative)", positive, negative)
	case negative > positive:
		return base + fmt.Sprintf("Generally negative sentiment (%d negative, %d positive)", negative, positive)
	default:
		return base + fmt.Sprintf("Mixed sentiment (%d positive, %d negative, %d neutral)", positive, negative, neutral)
	}
}

var nonWordOrSpace = regexp.MustCompile(`[^\w\s]`)

// normalizeTitle builds the dedup key: strip punctuation, lowercase,
// keep the first 50 characters.
func normalizeTitle(title string) string {
	key := nonWordOrSpace.ReplaceAllString(title, "")
	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) > 50 {
		key = key[:50]
	}
	return key
}

// dedupByTitle keeps the first occurrence of each normalized title.
func dedupByTitle(articles []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.NewsArticle, 0, len(articles))
	for _, article := range articles {
		key := normalizeTitle(article.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}
