package sentiment

import (
	"regexp"
	"strings"
)

// Financial-domain indicator patterns. General-purpose lexicons miss
// market vocabulary ("beat", "downgrade", "all-time high"), so these
// complement the lexicon scorer.
var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(beat|beats|beating|exceeded?|outperformed?|surge|surged|surging|record|records|up|growth|grow|growing|gains?|rally|bullish|optimistic|positive|strong|strength|robust|solid|impressive|excellent|outstanding|breakthrough|success|profit|profits|revenue|earnings|buy|upgrade|target|raised?|increase|increased?|boost|boosted?)\b`),
	regexp.MustCompile(`\b(all.?time.?high|new.?high|higher|rising|climbed?|jumped?|soared?|rallied?|gained?|advanced?)\b`),
}

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(miss|missed?|missing|underperformed?|drop|dropped?|dropping|fell|fall|falling|decline|declined?|declining|crash|crashed?|plunge|plunged?|tumble|tumbled?|loss|losses|lawsuit|lawsuits?|down|bearish|pessimistic|negative|weak|weakness|poor|disappointing|concerning|worried?|fear|fears|sell|downgrade|lowered?|decrease|decreased?|cut|slashed?)\b`),
	regexp.MustCompile(`\b(all.?time.?low|new.?low|lower|sinking|slumped?|retreated?|lost|erased?)\b`),
}

// RuleScorer scores text with financial indicator patterns.
type RuleScorer struct{}

// NewRuleScorer creates a new RuleScorer
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score returns (positives - negatives) / (positives + negatives) over
// pattern match counts, or 0 when nothing matched. Range is [-1, 1].
func (s *RuleScorer) Score(text string) float64 {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, p := range positivePatterns {
		positive += len(p.FindAllString(lower, -1))
	}
	for _, p := range negativePatterns {
		negative += len(p.FindAllString(lower, -1))
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}
