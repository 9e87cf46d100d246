package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrLeadNotFound is returned when no lead has the given id.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrAlreadyEnriched is returned when the lead already carries an enrichment snapshot.
	ErrAlreadyEnriched = errors.New("lead already enriched")
	// ErrEmptyEventLog is returned when inserting a lead without a created entry.
	ErrEmptyEventLog = errors.New("lead event log must not be empty")
)

const leadColumns = `
	id, lead_created_at, agent_id, first_name, last_name, phone, email, location,
	budget_min, budget_max, source, priority_score, intent_score, buyer_seller,
	timeline, status, intent, urgency, priority, ai_notes, event_logs, enrichment`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a normalized lead together with its event log in one statement.
// The store generates the id; a zero CreatedAt defaults to now().
func (r *Repository) Insert(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	if len(lead.EventLogs) == 0 {
		return domain.Lead{}, ErrEmptyEventLog
	}
	eventLogs, err := json.Marshal(lead.EventLogs)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("encode event logs: %w", err)
	}

	var createdAt *time.Time
	if !lead.CreatedAt.IsZero() {
		createdAt = &lead.CreatedAt
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			lead_created_at, agent_id, first_name, last_name, phone, email,
			source, priority_score, intent_score, buyer_seller, timeline, status,
			intent, urgency, priority, ai_notes, event_logs
		) VALUES (
			COALESCE($1, now()), $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17
		)
		RETURNING `+leadColumns,
		createdAt, lead.AgentID, lead.FirstName, lead.LastName, lead.Phone, lead.Email,
		lead.Source, lead.PriorityScore, lead.IntentScore, enumText(lead.BuyerSeller), lead.Timeline, lead.Status,
		lead.Intent, enumText(lead.Urgency), lead.Priority, lead.AINotes, eventLogs,
	)

	stored, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return stored, nil
}

// ApplyEnrichment merges non-null enrichment values, appends entry to the
// event log and stores the snapshot. It succeeds at most once per lead.
func (r *Repository) ApplyEnrichment(ctx context.Context, id uuid.UUID, enrichment domain.Enrichment, entry domain.EventLogEntry) (domain.Lead, error) {
	snapshot, err := json.Marshal(enrichment)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("encode enrichment: %w", err)
	}
	appended, err := json.Marshal([]domain.EventLogEntry{entry})
	if err != nil {
		return domain.Lead{}, fmt.Errorf("encode event log entry: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			location = COALESCE($5, location),
			budget_min = COALESCE($6, budget_min),
			budget_max = COALESCE($7, budget_max),
			event_logs = event_logs || $8::jsonb,
			enrichment = $9::jsonb
		WHERE id = $1 AND enrichment IS NULL
		RETURNING `+leadColumns,
		id, enrichment.FirstName, enrichment.LastName, enrichment.Email, enrichment.Location,
		enrichment.BudgetMin, enrichment.BudgetMax, appended, snapshot,
	)

	updated, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return domain.Lead{}, getErr
		}
		return domain.Lead{}, ErrAlreadyEnriched
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("apply enrichment: %w", err)
	}
	return updated, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// ListRecent returns the newest leads first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY lead_created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ListUnenriched returns leads without an enrichment snapshot that carry
// some summary text, oldest first, strictly after the cursor.
func (r *Repository) ListUnenriched(ctx context.Context, after Cursor, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE enrichment IS NULL
		  AND (COALESCE(ai_notes, '') <> '' OR COALESCE(intent, '') <> '')
		  AND (lead_created_at > $1 OR (lead_created_at = $1 AND id > $2))
		ORDER BY lead_created_at ASC, id ASC
		LIMIT $3
	`, after.CreatedAt, after.ID, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead        domain.Lead
		buyerSeller *string
		urgency     *string
		eventLogs   []byte
		enrichment  []byte
	)

	if err := row.Scan(
		&lead.ID, &lead.CreatedAt, &lead.AgentID, &lead.FirstName, &lead.LastName,
		&lead.Phone, &lead.Email, &lead.Location, &lead.BudgetMin, &lead.BudgetMax,
		&lead.Source, &lead.PriorityScore, &lead.IntentScore, &buyerSeller,
		&lead.Timeline, &lead.Status, &lead.Intent, &urgency, &lead.Priority,
		&lead.AINotes, &eventLogs, &enrichment,
	); err != nil {
		return domain.Lead{}, err
	}

	if buyerSeller != nil {
		if v, ok := domain.ParseBuyerSeller(*buyerSeller); ok {
			lead.BuyerSeller = &v
		}
	}
	if urgency != nil {
		if v, ok := domain.ParseUrgency(*urgency); ok {
			lead.Urgency = &v
		}
	}
	if len(eventLogs) > 0 {
		if err := json.Unmarshal(eventLogs, &lead.EventLogs); err != nil {
			return domain.Lead{}, fmt.Errorf("decode event logs: %w", err)
		}
	}
	if len(enrichment) > 0 && string(enrichment) != "null" {
		var snapshot domain.Enrichment
		if err := json.Unmarshal(enrichment, &snapshot); err != nil {
			return domain.Lead{}, fmt.Errorf("decode enrichment: %w", err)
		}
		lead.Enrichment = &snapshot
	}
	lead.CreatedAt = lead.CreatedAt.UTC()
	return lead, nil
}

// enumText converts an optional string-backed enum to a nullable text value.
func enumText[T ~string](value *T) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}
