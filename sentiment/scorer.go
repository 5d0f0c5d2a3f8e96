package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"stockscope/observability"
	"stockscope/services"
)

// minLLMTextLength is the minimum combined title+description length
// before an article is worth an LLM call.
const minLLMTextLength = 20

// Scorer combines lexicon, rule-based and optional LLM polarity scores
// into a single per-article polarity in [-1, 1].
type Scorer struct {
	vader *govader.SentimentIntensityAnalyzer
	rules *RuleScorer
	llm   services.LLMService // nil disables LLM scoring
}

// NewScorer creates a Scorer. Pass a nil llm to disable LLM scoring.
func NewScorer(llm services.LLMService) *Scorer {
	return &Scorer{
		vader: govader.NewSentimentIntensityAnalyzer(),
		rules: NewRuleScorer(),
		llm:   llm,
	}
}

// llmSentimentResponse is the structured response requested from the LLM
type llmSentimentResponse struct {
	SentimentScore float64 `json:"sentiment_score"`
	Reasoning      string  `json:"reasoning"`
}

const llmScoreSystemPrompt = `You are a financial sentiment analyst. ` +
	`Rate the sentiment of the given news text for investors in the mentioned company. ` +
	`Respond with JSON only: {"sentiment_score": <float between -1 and 1>, "reasoning": "<one sentence>"}`

// Score returns the mean of the available polarity scores for text.
// The lexicon and rule scorers always contribute; the LLM contributes
// only when configured and the text is substantial. A scorer that
// fails is skipped, and zero scorers yields 0.
func (s *Scorer) Score(ctx context.Context, text string) float64 {
	var scores []float64

	scores = append(scores, s.vader.PolarityScores(text).Compound)
	scores = append(scores, s.rules.Score(text))

	if s.llm != nil && len(strings.TrimSpace(text)) > minLLMTextLength {
		if llmScore, err := s.scoreLLM(ctx, text); err == nil {
			scores = append(scores, llmScore)
		} else {
			observability.Debug("LLM sentiment scoring failed, skipping",
				"error", err)
		}
	}

	if len(scores) == 0 {
		return 0
	}
	return mean(scores)
}

func (s *Scorer) scoreLLM(ctx context.Context, text string) (float64, error) {
	raw, err := s.llm.InvokeWithPrompt(ctx, llmScoreSystemPrompt, text)
	if err != nil {
		return 0, err
	}

	var resp llmSentimentResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		return 0, fmt.Errorf("failed to parse LLM sentiment response: %w", err)
	}

	if resp.SentimentScore > 1 {
		resp.SentimentScore = 1
	}
	if resp.SentimentScore < -1 {
		resp.SentimentScore = -1
	}
	return resp.SentimentScore, nil
}

// extractJSON trims any prose surrounding the first JSON object in raw.
// Models occasionally wrap the JSON in markdown fences.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdev returns the sample standard deviation, 0 when n < 2.
func sampleStdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
