// Package service turns extraction replies into lead enrichment values.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/sanitize"
	"github.com/jadu-codes/flow-layer-2/platform/validator"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultTimeout = 20 * time.Second
	// maxTranscriptRunes keeps long calls within the provider's context window.
	maxTranscriptRunes = 12000
)

var codeFenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// Generator produces a reply for a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service extracts enrichment values from call text. A nil generator means
// enrichment is not configured.
type Service struct {
	generator Generator
	val       *validator.Validator
	log       *logger.Logger
	timeout   time.Duration
}

// New creates an enrichment service.
func New(generator Generator, val *validator.Validator, log *logger.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		generator: generator,
		val:       val,
		log:       log,
		timeout:   timeout,
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.generator != nil
}

// Extract asks the provider for contact details in summary and transcript.
// It returns nil when enrichment is not configured, there is nothing to read,
// the call fails or the reply is not a JSON object. It never returns an error.
func (s *Service) Extract(ctx context.Context, summary, transcript string) *domain.Enrichment {
	if !s.Enabled() {
		return nil
	}
	summary = strings.TrimSpace(summary)
	transcript = strings.TrimSpace(transcript)
	if summary == "" && transcript == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Complete(ctx, buildPrompt(summary, transcript))
	if err != nil {
		s.log.WithContext(ctx).Warn("lead enrichment call failed", "error", err)
		return nil
	}

	result, err := s.parse(reply)
	if err != nil {
		s.log.WithContext(ctx).Warn("lead enrichment reply discarded", "error", err)
		return nil
	}
	return result
}

// parse reads the provider reply. Only JSON objects are accepted; string
// fields must be non-blank strings and budgets must be JSON numbers.
func (s *Service) parse(reply string) (*domain.Enrichment, error) {
	text := stripCodeFence(reply)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("reply is not valid JSON")
	}
	obj := gjson.Parse(text)
	if !obj.IsObject() {
		return nil, fmt.Errorf("reply is not a JSON object")
	}

	return &domain.Enrichment{
		FirstName: s.name(obj.Get("first_name")),
		LastName:  s.name(obj.Get("last_name")),
		Email:     s.email(obj.Get("email")),
		Location:  stringValue(obj.Get("location")),
		BudgetMin: budget(obj.Get("budget_min")),
		BudgetMax: budget(obj.Get("budget_max")),
	}, nil
}

func (s *Service) name(value gjson.Result) *string {
	raw := stringValue(value)
	if raw == nil {
		return nil
	}
	// Casers keep state, so each call gets its own.
	titled := cases.Title(language.Und).String(strings.ToLower(*raw))
	return &titled
}

func (s *Service) email(value gjson.Result) *string {
	raw := stringValue(value)
	if raw == nil {
		return nil
	}
	email := strings.ToLower(*raw)
	if s.val == nil || !s.val.IsEmail(email) {
		return nil
	}
	return &email
}

func stringValue(value gjson.Result) *string {
	if value.Type != gjson.String {
		return nil
	}
	cleaned := sanitize.Text(value.Str)
	if cleaned == "" || strings.EqualFold(cleaned, "null") {
		return nil
	}
	return &cleaned
}

func budget(value gjson.Result) *float64 {
	if value.Type != gjson.Number || value.Num < 0 {
		return nil
	}
	n := value.Num
	return &n
}

func stripCodeFence(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if m := codeFenceRegex.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

func buildPrompt(summary, transcript string) string {
	if runes := []rune(transcript); len(runes) > maxTranscriptRunes {
		transcript = string(runes[:maxTranscriptRunes])
	}
	if summary == "" {
		summary = "(none)"
	}
	if transcript == "" {
		transcript = "(none)"
	}
	return fmt.Sprintf("Call summary:\n%s\n\nTranscript:\n%s\n", summary, transcript)
}
