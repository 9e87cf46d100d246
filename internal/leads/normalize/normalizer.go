package normalize

import (
	"math"
	"strings"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/scoring"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/phone"
	"github.com/jadu-codes/flow-layer-2/platform/sanitize"
	"github.com/jadu-codes/flow-layer-2/platform/validator"
)

// Payload kinds, used as log and metric labels.
const (
	KindVendor  = "vendor"
	KindGeneric = "generic"
)

// Normalized is a lead ready for insertion plus the text enrichment reads.
// The lead has no ID, creation time or event log yet.
type Normalized struct {
	Kind       string
	Lead       domain.Lead
	Summary    string
	Transcript string
}

// Normalizer maps payloads onto leads.
type Normalizer struct {
	scorer      *scoring.Scorer
	phoneRegion string
	val         *validator.Validator
	log         *logger.Logger
}

// New creates a normalizer. phoneRegion is the default region for numbers
// without a country code.
func New(scorer *scoring.Scorer, phoneRegion string, val *validator.Validator, log *logger.Logger) *Normalizer {
	if phoneRegion == "" {
		phoneRegion = phone.DefaultRegion
	}
	return &Normalizer{
		scorer:      scorer,
		phoneRegion: phoneRegion,
		val:         val,
		log:         log,
	}
}

// Normalize dispatches on the payload variant. A vendor payload without a
// call object normalizes as an empty generic payload.
func (n *Normalizer) Normalize(p Payload) Normalized {
	switch payload := p.(type) {
	case VendorPayload:
		if payload.Call != nil {
			return n.vendor(payload.Call)
		}
	case GenericPayload:
		return n.generic(payload.Fields)
	}
	return n.generic(GenericLead{})
}

func (n *Normalizer) vendor(call *VendorCall) Normalized {
	if call.SummaryJSONErr != nil {
		n.log.Warn("summary_json discarded",
			"error", call.SummaryJSONErr,
			"agentId", call.AgentID,
		)
	}
	summaryJSON := call.SummaryJSON

	summary := firstNonBlank(
		stringField(summaryJSON, "call_summary"),
		call.CallSummary,
		call.Transcript,
	)
	sentiment := firstNonBlank(stringField(summaryJSON, "user_sentiment"), call.UserSentiment)

	successful := false
	if b := boolField(summaryJSON, "call_successful"); b != nil {
		successful = *b
	} else if call.CallSuccessful != nil {
		successful = *call.CallSuccessful
	}

	corpus := summary + " " + call.Transcript
	scored := n.scorer.Analyze(corpus, scoring.Signals{
		Sentiment:      sentiment,
		CallSuccessful: successful,
	})

	urgency := scored.Urgency
	lead := domain.Lead{
		AgentID:       optional(call.AgentID),
		FirstName:     optional(stringField(summaryJSON, "first_name")),
		LastName:      optional(stringField(summaryJSON, "last_name")),
		Phone:         n.phone(call.FromNumber),
		Email:         n.email(stringField(summaryJSON, "email")),
		Source:        domain.SourcePhoneCall,
		PriorityScore: intPtr(scored.PriorityScore),
		IntentScore:   intPtr(scored.IntentScore),
		BuyerSeller:   scored.BuyerSeller,
		Timeline:      scored.Timeline,
		Status:        domain.StatusNew,
		Intent:        optional(summary),
		Urgency:       &urgency,
		AINotes:       optional(summary),
	}

	return Normalized{
		Kind:       KindVendor,
		Lead:       lead,
		Summary:    summary,
		Transcript: call.Transcript,
	}
}

func (n *Normalizer) generic(fields GenericLead) Normalized {
	lead := domain.Lead{
		AgentID:       optional(fields.AgentID),
		FirstName:     optional(fields.FirstName),
		LastName:      optional(fields.LastName),
		Phone:         n.phone(fields.Phone),
		Email:         optional(fields.Email),
		Source:        withDefault(fields.Source, domain.SourceWebhook),
		PriorityScore: scorePtr(fields.PriorityScore),
		IntentScore:   scorePtr(fields.IntentScore),
		Timeline:      optional(fields.Timeline),
		Status:        withDefault(fields.Status, domain.StatusNew),
		Intent:        optional(fields.Intent),
		Priority:      optional(fields.Priority),
		AINotes:       optional(fields.AINotes),
	}
	if bs, ok := domain.ParseBuyerSeller(strings.ToLower(strings.TrimSpace(fields.BuyerSeller))); ok {
		lead.BuyerSeller = &bs
	}
	if u, ok := domain.ParseUrgency(strings.ToLower(strings.TrimSpace(fields.Urgency))); ok {
		lead.Urgency = &u
	}

	return Normalized{
		Kind:       KindGeneric,
		Lead:       lead,
		Summary:    firstNonBlank(fields.AINotes, fields.Intent),
		Transcript: fields.Transcript,
	}
}

// phone keeps the raw value when it is not a parseable number.
func (n *Normalizer) phone(raw string) *string {
	return optional(phone.NormalizeE164(sanitize.Text(raw), n.phoneRegion))
}

func (n *Normalizer) email(raw string) *string {
	value := strings.ToLower(sanitize.Text(raw))
	if value == "" || n.val == nil || !n.val.IsEmail(value) {
		return nil
	}
	return &value
}

// optional sanitizes free text and maps blank input to nil.
func optional(value string) *string {
	return sanitize.TextPtr(&value)
}

func withDefault(value, fallback string) string {
	if cleaned := sanitize.Text(value); cleaned != "" {
		return cleaned
	}
	return fallback
}

func scorePtr(value *float64) *int {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	score := domain.ClampScore(int(math.Round(math.Max(-1, math.Min(*value, 101)))))
	return &score
}

func intPtr(v int) *int { return &v }

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
