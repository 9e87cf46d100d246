// Package normalize maps inbound webhook payloads onto the lead schema.
// Every field read is tolerant: a missing field or a value of the wrong JSON
// type reads as absent, so normalization itself never fails.
package normalize

import (
	"bytes"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// EventCallAnalyzed is the vendor event emitted once post-call analysis is done.
const EventCallAnalyzed = "call_analyzed"

// ErrInvalidPayload is returned when the body is not a JSON object.
var ErrInvalidPayload = errors.New("payload is not a JSON object")

// Payload is either a VendorPayload or a GenericPayload.
type Payload interface {
	payload()
	RawBody() []byte
}

// VendorPayload is a phone vendor webhook, identified by its event field.
// Call is nil when the event carries no call object.
type VendorPayload struct {
	Event string
	Call  *VendorCall
	Raw   []byte
}

// Analyzed reports whether this event should produce a lead.
func (p VendorPayload) Analyzed() bool {
	return p.Event == EventCallAnalyzed && p.Call != nil
}

// RawBody returns the inbound JSON as received.
func (p VendorPayload) RawBody() []byte { return p.Raw }

func (VendorPayload) payload() {}

// VendorCall holds the call fields the normalizer reads.
type VendorCall struct {
	AgentID        string
	FromNumber     string
	Transcript     string
	CallSummary    string
	UserSentiment  string
	CallSuccessful *bool
	// SummaryJSON is custom_analysis_data.summary_json decoded best-effort.
	// It is always an object, empty when absent or unparseable.
	SummaryJSON gjson.Result
	// SummaryJSONErr records why SummaryJSON could not be decoded.
	SummaryJSONErr error
}

// GenericPayload is any JSON object that is not a vendor event.
type GenericPayload struct {
	Fields GenericLead
	Raw    []byte
}

// RawBody returns the inbound JSON as received.
func (p GenericPayload) RawBody() []byte { return p.Raw }

func (GenericPayload) payload() {}

// GenericLead holds the aliased fields read from a generic payload.
// Scores are nil unless the payload carries a JSON number.
type GenericLead struct {
	AgentID       string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	Source        string
	Status        string
	BuyerSeller   string
	Timeline      string
	Intent        string
	Urgency       string
	Priority      string
	AINotes       string
	Transcript    string
	PriorityScore *float64
	IntentScore   *float64
}

// Parse classifies body into a vendor or generic payload.
// It fails only when body is not a JSON object. Invalid UTF-8 sequences are
// replaced with U+FFFD so the stored text and raw body stay valid.
func Parse(body []byte) (Payload, error) {
	trimmed := bytes.ToValidUTF8(bytes.TrimSpace(body), []byte("\uFFFD"))
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(trimmed)
	if !root.IsObject() {
		return nil, ErrInvalidPayload
	}
	raw := append([]byte(nil), trimmed...)

	event := root.Get("event")
	if event.Type == gjson.String {
		call := root.Get("call")
		switch {
		case event.Str != EventCallAnalyzed:
			p := VendorPayload{Event: event.Str, Raw: raw}
			if call.IsObject() {
				p.Call = parseVendorCall(call)
			}
			return p, nil
		case call.IsObject():
			return VendorPayload{Event: event.Str, Call: parseVendorCall(call), Raw: raw}, nil
		}
	}

	source := root
	if lead := root.Get("lead"); lead.IsObject() {
		source = lead
	}
	return GenericPayload{Fields: parseGenericLead(source), Raw: raw}, nil
}

func parseVendorCall(call gjson.Result) *VendorCall {
	analysis := call.Get("call_analysis")
	summaryJSON, err := parseEmbeddedJSON(analysis.Get("custom_analysis_data.summary_json"))
	return &VendorCall{
		AgentID:        stringField(call, "agent_id"),
		FromNumber:     stringField(call, "from_number"),
		Transcript:     stringField(call, "transcript"),
		CallSummary:    stringField(analysis, "call_summary"),
		UserSentiment:  stringField(analysis, "user_sentiment"),
		CallSuccessful: boolField(analysis, "call_successful"),
		SummaryJSON:    summaryJSON,
		SummaryJSONErr: err,
	}
}

func parseGenericLead(obj gjson.Result) GenericLead {
	return GenericLead{
		AgentID:       stringField(obj, "agent_id", "agentId"),
		FirstName:     stringField(obj, "first_name", "firstName"),
		LastName:      stringField(obj, "last_name", "lastName"),
		Phone:         stringField(obj, "phone", "caller_number", "phone_number", "from_number"),
		Email:         stringField(obj, "email", "email_address"),
		Source:        stringField(obj, "source"),
		Status:        stringField(obj, "status"),
		BuyerSeller:   stringField(obj, "buyer_seller", "buyerSeller"),
		Timeline:      stringField(obj, "timeline"),
		Intent:        stringField(obj, "intent"),
		Urgency:       stringField(obj, "urgency"),
		Priority:      stringField(obj, "priority"),
		AINotes:       stringField(obj, "ai_notes", "notes", "aiNotes"),
		Transcript:    stringField(obj, "transcript"),
		PriorityScore: numberField(obj, "priority_score", "priorityScore"),
		IntentScore:   numberField(obj, "intent_score", "intentScore"),
	}
}

// stringField returns the first alias holding a non-blank JSON string.
func stringField(obj gjson.Result, aliases ...string) string {
	for _, alias := range aliases {
		value := obj.Get(alias)
		if value.Type == gjson.String && strings.TrimSpace(value.Str) != "" {
			return value.Str
		}
	}
	return ""
}

// numberField returns the first alias holding a JSON number.
func numberField(obj gjson.Result, aliases ...string) *float64 {
	for _, alias := range aliases {
		value := obj.Get(alias)
		if value.Type == gjson.Number {
			n := value.Num
			return &n
		}
	}
	return nil
}

func boolField(obj gjson.Result, path string) *bool {
	value := obj.Get(path)
	if value.Type != gjson.True && value.Type != gjson.False {
		return nil
	}
	b := value.Bool()
	return &b
}
