// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// StatusNew is the status of every freshly ingested lead.
	StatusNew = "new"

	// SourcePhoneCall marks leads produced from an analyzed vendor call.
	SourcePhoneCall = "AI Phone Call"
	// SourceWebhook is the default source of generic payloads.
	SourceWebhook = "webhook"

	// EventCreated is the first event log entry of every lead.
	EventCreated = "created"
	// EventEnriched is appended when enrichment values are merged.
	EventEnriched = "enriched"

	MinScore = 0
	MaxScore = 100
)

// BuyerSeller classifies what the caller wants to do.
type BuyerSeller string

const (
	Buyer  BuyerSeller = "buyer"
	Seller BuyerSeller = "seller"
	Renter BuyerSeller = "renter"
)

// ParseBuyerSeller accepts only the known classifications.
func ParseBuyerSeller(value string) (BuyerSeller, bool) {
	switch BuyerSeller(value) {
	case Buyer, Seller, Renter:
		return BuyerSeller(value), true
	}
	return "", false
}

// Urgency is the coarse follow-up urgency of a lead.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// ParseUrgency accepts only the known urgency levels.
func ParseUrgency(value string) (Urgency, bool) {
	switch Urgency(value) {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return Urgency(value), true
	}
	return "", false
}

// EventLogEntry is one element of a lead's append-only event log.
type EventLogEntry struct {
	Type   string          `json:"type"`
	At     time.Time       `json:"at"`
	Source string          `json:"source"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// Lead is the normalized record stored in the leads table.
// JSON names follow the column names.
type Lead struct {
	ID            uuid.UUID       `json:"id"`
	CreatedAt     time.Time       `json:"lead_created_at"`
	AgentID       *string         `json:"agent_id"`
	FirstName     *string         `json:"first_name"`
	LastName      *string         `json:"last_name"`
	Phone         *string         `json:"phone"`
	Email         *string         `json:"email"`
	Location      *string         `json:"location"`
	BudgetMin     *float64        `json:"budget_min"`
	BudgetMax     *float64        `json:"budget_max"`
	Source        string          `json:"source"`
	PriorityScore *int            `json:"priority_score"`
	IntentScore   *int            `json:"intent_score"`
	BuyerSeller   *BuyerSeller    `json:"buyer_seller"`
	Timeline      *string         `json:"timeline"`
	Status        string          `json:"status"`
	Intent        *string         `json:"intent"`
	Urgency       *Urgency        `json:"urgency"`
	Priority      *string         `json:"priority"`
	AINotes       *string         `json:"ai_notes"`
	EventLogs     []EventLogEntry `json:"event_logs"`
	Enrichment    *Enrichment     `json:"enrichment"`
}

// DisplayName joins the known name parts, or returns "".
func (l Lead) DisplayName() string {
	switch {
	case l.FirstName != nil && l.LastName != nil:
		return *l.FirstName + " " + *l.LastName
	case l.FirstName != nil:
		return *l.FirstName
	case l.LastName != nil:
		return *l.LastName
	}
	return ""
}

// CombinedScore is priority plus intent with missing scores counted as zero.
func (l Lead) CombinedScore() int {
	total := 0
	if l.PriorityScore != nil {
		total += *l.PriorityScore
	}
	if l.IntentScore != nil {
		total += *l.IntentScore
	}
	return total
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(value int) int {
	if value < MinScore {
		return MinScore
	}
	if value > MaxScore {
		return MaxScore
	}
	return value
}

// NewCreatedEvent builds the event log entry written with the insert.
func NewCreatedEvent(at time.Time, source string, raw json.RawMessage) EventLogEntry {
	return EventLogEntry{Type: EventCreated, At: at.UTC(), Source: source, Raw: raw}
}

// NewEnrichedEvent builds the event log entry appended by enrichment.
func NewEnrichedEvent(at time.Time, source string) EventLogEntry {
	return EventLogEntry{Type: EventEnriched, At: at.UTC(), Source: source}
}
