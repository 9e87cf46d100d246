package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Delta is a score adjustment applied when a signal is present.
type Delta struct {
	Priority int `yaml:"priority"`
	Intent   int `yaml:"intent"`
}

// Weights is the data-driven score table. Every adjustment is added to the
// base scores and the totals are clamped once at the end.
type Weights struct {
	BasePriority      int              `yaml:"base_priority"`
	BaseIntent        int              `yaml:"base_intent"`
	Classified        Delta            `yaml:"classified"`
	Timeline          map[string]Delta `yaml:"timeline"`
	PurchaseIntent    Delta            `yaml:"purchase_intent"`
	SentimentPositive Delta            `yaml:"sentiment_positive"`
	SentimentNegative Delta            `yaml:"sentiment_negative"`
	CallSuccessful    Delta            `yaml:"call_successful"`
}

// DefaultWeights returns the built-in table. A fresh map is returned on every
// call so callers can overlay values safely.
func DefaultWeights() Weights {
	return Weights{
		BasePriority: 40,
		BaseIntent:   50,
		Classified:   Delta{Priority: 10, Intent: 10},
		Timeline: map[string]Delta{
			TimelineASAP:      {Priority: 25, Intent: 15},
			TimelineZeroThree: {Priority: 15, Intent: 10},
			TimelineThreeSix:  {Priority: 5, Intent: 5},
			TimelineSixTwelve: {Priority: 0, Intent: 0},
		},
		PurchaseIntent:    Delta{Intent: 10},
		SentimentPositive: Delta{Priority: 10},
		SentimentNegative: Delta{Priority: -10},
		CallSuccessful:    Delta{Priority: 30, Intent: 20},
	}
}

// LoadWeights reads a YAML weight table from path over the defaults.
// Keys missing from the file keep their default values. An empty path
// returns the defaults.
func LoadWeights(path string) (Weights, error) {
	weights := DefaultWeights()
	if path == "" {
		return weights, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read scoring weights: %w", err)
	}
	return ParseWeights(data)
}

// ParseWeights decodes a YAML weight table over the defaults.
func ParseWeights(data []byte) (Weights, error) {
	weights := DefaultWeights()
	if err := yaml.Unmarshal(data, &weights); err != nil {
		return Weights{}, fmt.Errorf("parse scoring weights: %w", err)
	}
	if err := weights.validate(); err != nil {
		return Weights{}, err
	}
	return weights, nil
}

func (w Weights) validate() error {
	for bucket := range w.Timeline {
		if !IsTimelineBucket(bucket) {
			return fmt.Errorf("scoring weights: unknown timeline bucket %q", bucket)
		}
	}
	return nil
}
