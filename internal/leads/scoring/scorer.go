package scoring

import (
	"strings"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
)

// Signals are the call facts that feed the score beyond the text corpus.
type Signals struct {
	Sentiment      string
	CallSuccessful bool
}

// Result is the outcome of analysing one call.
type Result struct {
	BuyerSeller   *domain.BuyerSeller
	Timeline      *string
	Urgency       domain.Urgency
	PriorityScore int
	IntentScore   int
}

// Scorer applies the rule tables and a weight table.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer for the given weights.
func NewScorer(weights Weights) *Scorer {
	if weights.Timeline == nil {
		weights.Timeline = map[string]Delta{}
	}
	return &Scorer{weights: weights}
}

// Analyze classifies the corpus and computes clamped scores.
// It is deterministic and never fails.
func (s *Scorer) Analyze(corpus string, signals Signals) Result {
	w := s.weights
	priority := w.BasePriority
	intent := w.BaseIntent

	result := Result{Urgency: domain.UrgencyMedium}

	if label := Classify(corpus); label != nil {
		result.BuyerSeller = label
		priority += w.Classified.Priority
		intent += w.Classified.Intent
	}

	if bucket, bucketUrgency, ok := MatchTimeline(corpus); ok {
		result.Timeline = &bucket
		result.Urgency = bucketUrgency
		delta := w.Timeline[bucket]
		priority += delta.Priority
		intent += delta.Intent
	}

	if explicit, ok := ExplicitUrgency(corpus); ok {
		result.Urgency = explicit
	}

	if HasPurchaseIntent(corpus) {
		priority += w.PurchaseIntent.Priority
		intent += w.PurchaseIntent.Intent
	}

	switch strings.ToLower(strings.TrimSpace(signals.Sentiment)) {
	case "positive":
		priority += w.SentimentPositive.Priority
		intent += w.SentimentPositive.Intent
	case "negative":
		priority += w.SentimentNegative.Priority
		intent += w.SentimentNegative.Intent
	}

	if signals.CallSuccessful {
		priority += w.CallSuccessful.Priority
		intent += w.CallSuccessful.Intent
	}

	result.PriorityScore = domain.ClampScore(priority)
	result.IntentScore = domain.ClampScore(intent)
	return result
}
