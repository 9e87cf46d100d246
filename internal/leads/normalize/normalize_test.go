package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/scoring"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/validator"

	"github.com/tidwall/gjson"
)

func newTestNormalizer() *Normalizer {
	return New(scoring.NewScorer(scoring.DefaultWeights()), "US", validator.New(), logger.Discard())
}

func mustParse(t *testing.T, body string) Payload {
	t.Helper()
	p, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse(%s): %v", body, err)
	}
	return p
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2]", `"text"`, "42", "{", "null"} {
		if _, err := Parse([]byte(body)); err != ErrInvalidPayload {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidPayload", body, err)
		}
	}
}

func TestParseReplacesInvalidUTF8(t *testing.T) {
	body := []byte("{\"event\":\"call_analyzed\",\"call\":{\"transcript\":\"I want to buy \xff\xfe now\"}}")

	p := mustParse(t, string(body))
	if !utf8.Valid(p.RawBody()) {
		t.Fatalf("expected valid UTF-8 raw body, got %q", p.RawBody())
	}

	normalized := newTestNormalizer().Normalize(p)
	lead := normalized.Lead
	if lead.Intent == nil || !utf8.ValidString(*lead.Intent) {
		t.Fatalf("expected valid UTF-8 intent, got %v", lead.Intent)
	}
	if lead.AINotes == nil || !utf8.ValidString(*lead.AINotes) {
		t.Fatalf("expected valid UTF-8 notes, got %v", lead.AINotes)
	}
	if !strings.Contains(normalized.Transcript, "\uFFFD") {
		t.Fatalf("expected replacement character in transcript, got %q", normalized.Transcript)
	}
	if lead.BuyerSeller == nil || *lead.BuyerSeller != domain.Buyer {
		t.Fatalf("expected buyer classification, got %v", lead.BuyerSeller)
	}
}

func TestParseDispatch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantVendor bool
		analyzed   bool
	}{
		{name: "analyzed call", body: `{"event":"call_analyzed","call":{}}`, wantVendor: true, analyzed: true},
		{name: "other event", body: `{"event":"call_started","call":{}}`, wantVendor: true},
		{name: "other event without call", body: `{"event":"call_ended"}`, wantVendor: true},
		{name: "analyzed without call", body: `{"event":"call_analyzed"}`},
		{name: "analyzed with non-object call", body: `{"event":"call_analyzed","call":"x"}`},
		{name: "non-string event", body: `{"event":7,"phone":"1"}`},
		{name: "empty object", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.body)
			vendor, ok := p.(VendorPayload)
			if ok != tt.wantVendor {
				t.Fatalf("vendor = %v, want %v (%T)", ok, tt.wantVendor, p)
			}
			if ok && vendor.Analyzed() != tt.analyzed {
				t.Fatalf("Analyzed() = %v, want %v", vendor.Analyzed(), tt.analyzed)
			}
			if string(p.RawBody()) != tt.body {
				t.Fatalf("raw body not preserved: %s", p.RawBody())
			}
		})
	}
}

func TestNormalizeCallAnalyzedScenario(t *testing.T) {
	body := `{"event":"call_analyzed","call":{"from_number":"+15551234567","transcript":"I want to buy a house this week","call_analysis":{"call_successful":true,"user_sentiment":"Positive"}}}`
	out := newTestNormalizer().Normalize(mustParse(t, body))
	lead := out.Lead

	if out.Kind != KindVendor {
		t.Fatalf("expected vendor kind, got %q", out.Kind)
	}
	if lead.BuyerSeller == nil || *lead.BuyerSeller != domain.Buyer {
		t.Fatalf("expected buyer, got %v", lead.BuyerSeller)
	}
	if lead.Timeline == nil || *lead.Timeline != scoring.TimelineASAP {
		t.Fatalf("expected ASAP, got %v", lead.Timeline)
	}
	if lead.Urgency == nil || *lead.Urgency != domain.UrgencyHigh {
		t.Fatalf("expected high urgency, got %v", lead.Urgency)
	}
	if lead.PriorityScore == nil || *lead.PriorityScore != 100 {
		t.Fatalf("expected priority 100, got %v", lead.PriorityScore)
	}
	if lead.IntentScore == nil || *lead.IntentScore > 100 {
		t.Fatalf("expected intent <= 100, got %v", lead.IntentScore)
	}
	if lead.Phone == nil || *lead.Phone != "+15551234567" {
		t.Fatalf("expected caller phone, got %v", lead.Phone)
	}
	if lead.Source != domain.SourcePhoneCall || lead.Status != domain.StatusNew {
		t.Fatalf("unexpected source/status %q/%q", lead.Source, lead.Status)
	}
	if lead.Intent == nil || *lead.Intent != "I want to buy a house this week" {
		t.Fatalf("transcript should be the summary fallback, got %v", lead.Intent)
	}
	if lead.FirstName != nil || lead.Email != nil {
		t.Fatalf("name and email should be null without summary_json")
	}
}

func TestNormalizeSummaryJSONPreferred(t *testing.T) {
	body := `{"event":"call_analyzed","call":{"agent_id":"agent_1","from_number":"(415) 555-2671","transcript":"hello",
		"call_analysis":{"call_summary":"plain summary","user_sentiment":"Negative",
		"custom_analysis_data":{"summary_json":"{\"call_summary\":\"Seller wants to list my home next year\",\"first_name\":\"Ana\",\"email\":\"ANA@example.com\",\"user_sentiment\":\"Positive\"}"}}}}`
	lead := newTestNormalizer().Normalize(mustParse(t, body)).Lead

	if lead.Intent == nil || *lead.Intent != "Seller wants to list my home next year" {
		t.Fatalf("expected summary_json summary, got %v", lead.Intent)
	}
	if lead.BuyerSeller == nil || *lead.BuyerSeller != domain.Seller {
		t.Fatalf("expected seller, got %v", lead.BuyerSeller)
	}
	if lead.Urgency == nil || *lead.Urgency != domain.UrgencyLow {
		t.Fatalf("expected low urgency for next year, got %v", lead.Urgency)
	}
	// 40 base + 10 classified + 0 six-twelve + 10 positive from summary_json.
	if lead.PriorityScore == nil || *lead.PriorityScore != 60 {
		t.Fatalf("expected priority 60, got %v", lead.PriorityScore)
	}
	if lead.FirstName == nil || *lead.FirstName != "Ana" {
		t.Fatalf("expected first name from summary_json, got %v", lead.FirstName)
	}
	if lead.Email == nil || *lead.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %v", lead.Email)
	}
	if lead.AgentID == nil || *lead.AgentID != "agent_1" {
		t.Fatalf("expected agent id, got %v", lead.AgentID)
	}
	if lead.Phone == nil || *lead.Phone != "+14155552671" {
		t.Fatalf("expected E.164 phone, got %v", lead.Phone)
	}
}

func TestNormalizeBrokenSummaryJSONDegrades(t *testing.T) {
	body := `{"event":"call_analyzed","call":{"call_analysis":{"call_summary":"Renter asking about leases","custom_analysis_data":{"summary_json":"{not json"}}}}`
	p := mustParse(t, body).(VendorPayload)
	if p.Call.SummaryJSONErr == nil {
		t.Fatalf("expected summary_json error to be recorded")
	}

	lead := newTestNormalizer().Normalize(p).Lead
	if lead.Intent == nil || *lead.Intent != "Renter asking about leases" {
		t.Fatalf("expected call_summary fallback, got %v", lead.Intent)
	}
	if lead.BuyerSeller == nil || *lead.BuyerSeller != domain.Renter {
		t.Fatalf("expected renter, got %v", lead.BuyerSeller)
	}
}

func TestNormalizeVendorMissingFields(t *testing.T) {
	lead := newTestNormalizer().Normalize(mustParse(t, `{"event":"call_analyzed","call":{"transcript":5,"call_analysis":[]}}`)).Lead

	if lead.Intent != nil || lead.AINotes != nil || lead.Phone != nil || lead.BuyerSeller != nil || lead.Timeline != nil {
		t.Fatalf("expected null fields, got %+v", lead)
	}
	if *lead.Urgency != domain.UrgencyMedium || *lead.PriorityScore != 40 || *lead.IntentScore != 50 {
		t.Fatalf("expected defaults, got urgency=%v priority=%v intent=%v", *lead.Urgency, *lead.PriorityScore, *lead.IntentScore)
	}
}

func TestNormalizeEmptyGenericPayload(t *testing.T) {
	out := newTestNormalizer().Normalize(mustParse(t, `{}`))
	lead := out.Lead

	if out.Kind != KindGeneric {
		t.Fatalf("expected generic kind, got %q", out.Kind)
	}
	if lead.Status != domain.StatusNew || lead.Source != domain.SourceWebhook {
		t.Fatalf("unexpected defaults %q/%q", lead.Status, lead.Source)
	}
	if lead.FirstName != nil || lead.Phone != nil || lead.PriorityScore != nil || lead.IntentScore != nil ||
		lead.BuyerSeller != nil || lead.Urgency != nil || lead.Timeline != nil || lead.AINotes != nil {
		t.Fatalf("expected all optional fields null, got %+v", lead)
	}
}

func TestNormalizeGenericAliases(t *testing.T) {
	body := `{"lead":{"firstName":"<b>Sam</b>","lastName":"Lee","caller_number":"415 555 2671","notes":"call back",
		"priority_score":140,"intentScore":"high","buyer_seller":"Seller","urgency":"urgent","timeline":"spring","source":"zapier"}}`
	out := newTestNormalizer().Normalize(mustParse(t, body))
	lead := out.Lead

	if lead.FirstName == nil || *lead.FirstName != "Sam" {
		t.Fatalf("expected HTML-stripped first name, got %v", lead.FirstName)
	}
	if lead.LastName == nil || *lead.LastName != "Lee" {
		t.Fatalf("expected last name alias, got %v", lead.LastName)
	}
	if lead.Phone == nil || *lead.Phone != "+14155552671" {
		t.Fatalf("expected caller_number alias, got %v", lead.Phone)
	}
	if lead.AINotes == nil || *lead.AINotes != "call back" || out.Summary != "call back" {
		t.Fatalf("expected notes alias, got %v", lead.AINotes)
	}
	if lead.PriorityScore == nil || *lead.PriorityScore != 100 {
		t.Fatalf("expected clamped priority, got %v", lead.PriorityScore)
	}
	if lead.IntentScore != nil {
		t.Fatalf("non-numeric score must be null, got %v", *lead.IntentScore)
	}
	if lead.BuyerSeller == nil || *lead.BuyerSeller != domain.Seller {
		t.Fatalf("expected case-folded seller, got %v", lead.BuyerSeller)
	}
	if lead.Urgency != nil {
		t.Fatalf("unknown urgency must be null, got %v", *lead.Urgency)
	}
	if lead.Timeline == nil || *lead.Timeline != "spring" || lead.Source != "zapier" {
		t.Fatalf("expected free-form timeline and source, got %v %q", lead.Timeline, lead.Source)
	}
}

func TestNormalizeScoresAlwaysInRange(t *testing.T) {
	bodies := []string{
		`{"priority_score":-5,"intent_score":1e9}`,
		`{"event":"call_analyzed","call":{"transcript":"just browsing, sell, next year","call_analysis":{"user_sentiment":"Negative"}}}`,
		`{"event":"call_analyzed","call":{"transcript":"ready to buy asap, pre-approved, emergency","call_analysis":{"call_successful":true,"user_sentiment":"Positive"}}}`,
	}
	n := newTestNormalizer()
	for _, body := range bodies {
		lead := n.Normalize(mustParse(t, body)).Lead
		for _, score := range []*int{lead.PriorityScore, lead.IntentScore} {
			if score != nil && (*score < 0 || *score > 100) {
				t.Fatalf("score out of range for %s: %d", body, *score)
			}
		}
	}
}

func TestParseEmbeddedJSON(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		wantKey string
	}{
		{name: "absent", value: `{}`},
		{name: "null", value: `{"v":null}`},
		{name: "inline object", value: `{"v":{"k":"x"}}`, wantKey: "x"},
		{name: "encoded object", value: `{"v":"{\"k\":\"x\"}"}`, wantKey: "x"},
		{name: "blank string", value: `{"v":"  "}`},
		{name: "malformed", value: `{"v":"{"}`, wantErr: true},
		{name: "encoded array", value: `{"v":"[1]"}`, wantErr: true},
		{name: "number", value: `{"v":3}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEmbeddedJSON(gjson.Get(tt.value, "v"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.IsObject() {
				t.Fatalf("result must always be an object")
			}
			if got.Get("k").String() != tt.wantKey {
				t.Fatalf("k = %q, want %q", got.Get("k").String(), tt.wantKey)
			}
		})
	}
}
