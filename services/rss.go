package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockscope/models"
	"stockscope/observability"
)

// DefaultRSSFeeds are the finance feeds polled when none are configured.
var DefaultRSSFeeds = []string{
	"https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
	"https://www.cnbc.com/id/100003114/device/rss/rss.html",
	"https://feeds.marketwatch.com/marketwatch/topstories/",
}

// RSSService polls a fixed list of finance RSS feeds and filters the
// items down to those mentioning the symbol or its company terms.
// Individual feed failures are logged and swallowed: one dead feed
// must not take down the whole sentiment pipeline.
type RSSService struct {
	feeds      []string
	httpClient *http.Client
}

// NewRSSService creates a new RSSService instance
func NewRSSService(feeds []string) *RSSService {
	if len(feeds) == 0 {
		feeds = DefaultRSSFeeds
	}
	return &RSSService{
		feeds:      feeds,
		httpClient: newHTTPClient(),
	}
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// FetchArticles returns articles from all feeds that mention at least
// one of the search terms, published within the last daysBack days,
// capped at limit.
func (s *RSSService) FetchArticles(ctx context.Context, symbol string, terms []string, daysBack, limit int) ([]models.NewsArticle, error) {
	const op = "fetch_rss"
	if limit <= 0 {
		limit = 20
	}
	if daysBack <= 0 {
		daysBack = 7
	}
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerRSS, op)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerRSS, op)

	var articles []models.NewsArticle
	for _, feed := range s.feeds {
		if ctx.Err() != nil {
			return articles, fmt.Errorf("%s cancelled: %w", op, ctx.Err())
		}

		feedURL := feed
		if strings.Contains(feedURL, "%s") {
			feedURL = fmt.Sprintf(feedURL, symbol)
		}

		items, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			observability.Warn("RSS feed failed, skipping",
				"feed", feedURL,
				"error", err)
			metrics.RecordExternalAPIError(BreakerRSS, op, string(KindOf(err)))
			continue
		}

		for _, item := range items {
			if !matchesTerms(item.Title+" "+item.Description, symbol, terms) {
				continue
			}

			publishedAt := parsePubDate(item.PubDate)
			if publishedAt.Before(cutoff) {
				continue
			}

			articles = append(articles, models.NewsArticle{
				Title:       item.Title,
				Description: item.Description,
				URL:         item.Link,
				Source:      "rss",
				PublishedAt: publishedAt,
			})
			if len(articles) >= limit {
				return articles, nil
			}
		}
	}

	return articles, nil
}

func (s *RSSService) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	const op = "fetch_rss"

	return WithCircuitBreaker(ctx, BreakerRSS, func() ([]rssItem, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			return nil, NewStockDataError(KindInternal, op, BreakerRSS, err)
		}
		req.Header.Set("User-Agent", "stockscope/1.0")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, classifyTransportError(op, BreakerRSS, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			kind := KindServiceUnavailable
			if resp.StatusCode == http.StatusTooManyRequests {
				kind = KindRateLimited
			}
			return nil, NewStockDataError(kind, op, BreakerRSS,
				fmt.Errorf("status %d from %s", resp.StatusCode, feedURL))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, NewStockDataError(KindServiceUnavailable, op, BreakerRSS,
				fmt.Errorf("failed to read feed body: %w", err))
		}

		var doc rssDocument
		if err := xml.Unmarshal(body, &doc); err != nil {
			return nil, NewStockDataError(KindInternal, op, BreakerRSS,
				fmt.Errorf("failed to parse feed XML: %w", err))
		}

		return doc.Channel.Items, nil
	})
}

// matchesTerms reports whether the text mentions the symbol as a word
// or any of the company search terms as a substring.
func matchesTerms(text, symbol string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.')
	}) {
		if strings.EqualFold(word, symbol) {
			return true
		}
	}
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// rssDateLayouts covers the pubDate formats seen in the wild.
var rssDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range rssDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
