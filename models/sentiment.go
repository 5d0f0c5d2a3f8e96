package models

import "time"

// SentimentLabel classifies the polarity of an article or a corpus.
type SentimentLabel string

const (
	SentimentVeryNegative SentimentLabel = "very_negative"
	SentimentNegative     SentimentLabel = "negative"
	SentimentNeutral      SentimentLabel = "neutral"
	SentimentPositive     SentimentLabel = "positive"
	SentimentVeryPositive SentimentLabel = "very_positive"
)

// LabelForPolarity maps a compound polarity score to its label.
// Thresholds: ±0.5 for the strong labels, ±0.15 for the weak ones.
func LabelForPolarity(p float64) SentimentLabel {
	switch {
	case p >= 0.5:
		return SentimentVeryPositive
	case p >= 0.15:
		return SentimentPositive
	case p <= -0.5:
		return SentimentVeryNegative
	case p <= -0.15:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentItem is one scored article.
type SentimentItem struct {
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Polarity    float64        `json:"polarity"`
	Label       SentimentLabel `json:"label"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	URL         string         `json:"url,omitempty"`
}

// SentimentSummary aggregates scored items into an overall view.
type SentimentSummary struct {
	OverallLabel  SentimentLabel `json:"overall_label"`
	Confidence    float64        `json:"confidence"`
	PositiveCount int            `json:"positive_count"`
	NegativeCount int            `json:"negative_count"`
	NeutralCount  int            `json:"neutral_count"`
	SummaryText   string         `json:"summary_text"`
}

// NewNeutralSummary returns the summary used when no articles were found
// or when sentiment analysis failed entirely.
func NewNeutralSummary(text string) *SentimentSummary {
	if text == "" {
		text = "No sentiment data available"
	}
	return &SentimentSummary{
		OverallLabel: SentimentNeutral,
		Confidence:   0,
		SummaryText:  text,
	}
}
