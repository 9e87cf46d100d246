package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/platform/db"

	"github.com/google/uuid"
)

type testDatabaseConfig string

func (c testDatabaseConfig) GetDatabaseURL() string { return string(c) }

// newTestRepository connects to TEST_DATABASE_URL, applies the schema and
// empties the leads table. Tests are skipped without a database.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := testDatabaseConfig(url)
	if err := db.RunMigrations(ctx, cfg); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE leads`); err != nil {
		t.Fatalf("truncate leads: %v", err)
	}
	return New(pool)
}

func strPtr(s string) *string { return &s }

func newLead(createdAt time.Time, notes string) domain.Lead {
	buyer := domain.Buyer
	urgency := domain.UrgencyHigh
	priority, intent := 80, 70
	return domain.Lead{
		CreatedAt:     createdAt,
		FirstName:     strPtr("Jane"),
		Phone:         strPtr("+15551234567"),
		Source:        domain.SourcePhoneCall,
		Status:        domain.StatusNew,
		PriorityScore: &priority,
		IntentScore:   &intent,
		BuyerSeller:   &buyer,
		Urgency:       &urgency,
		AINotes:       strPtr(notes),
		EventLogs: []domain.EventLogEntry{
			domain.NewCreatedEvent(createdAt, domain.SourcePhoneCall, []byte(`{"event":"call_analyzed"}`)),
		},
	}
}

func TestInsertAndGetByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	stored, err := repo.Insert(ctx, newLead(createdAt, "wants to buy"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if stored.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at = %v, want %v", stored.CreatedAt, createdAt)
	}
	if len(stored.EventLogs) != 1 || stored.EventLogs[0].Type != domain.EventCreated {
		t.Fatalf("expected created event, got %+v", stored.EventLogs)
	}
	if stored.BuyerSeller == nil || *stored.BuyerSeller != domain.Buyer {
		t.Fatalf("expected buyer, got %v", stored.BuyerSeller)
	}

	got, err := repo.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != stored.ID || *got.FirstName != "Jane" || got.Enrichment != nil {
		t.Fatalf("unexpected lead %+v", got)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestInsertRejectsEmptyEventLog(t *testing.T) {
	repo := &Repository{}
	lead := newLead(time.Now(), "x")
	lead.EventLogs = nil
	if _, err := repo.Insert(context.Background(), lead); !errors.Is(err, ErrEmptyEventLog) {
		t.Fatalf("expected ErrEmptyEventLog, got %v", err)
	}
}

func TestApplyEnrichmentOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored, err := repo.Insert(ctx, newLead(time.Now().UTC(), "wants to buy"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	budget := 450000.0
	enrichment := domain.Enrichment{LastName: strPtr("Doe"), BudgetMax: &budget}
	updated, err := repo.ApplyEnrichment(ctx, stored.ID, enrichment, domain.NewEnrichedEvent(time.Now(), "llm"))
	if err != nil {
		t.Fatalf("ApplyEnrichment: %v", err)
	}
	if *updated.FirstName != "Jane" {
		t.Fatalf("first name must not be erased, got %v", updated.FirstName)
	}
	if updated.LastName == nil || *updated.LastName != "Doe" || *updated.BudgetMax != budget {
		t.Fatalf("enrichment not merged: %+v", updated)
	}
	if len(updated.EventLogs) != 2 || updated.EventLogs[1].Type != domain.EventEnriched {
		t.Fatalf("expected appended enriched event, got %+v", updated.EventLogs)
	}
	if updated.Enrichment == nil {
		t.Fatalf("expected enrichment snapshot")
	}

	_, err = repo.ApplyEnrichment(ctx, stored.ID, enrichment, domain.NewEnrichedEvent(time.Now(), "llm"))
	if !errors.Is(err, ErrAlreadyEnriched) {
		t.Fatalf("expected ErrAlreadyEnriched, got %v", err)
	}

	_, err = repo.ApplyEnrichment(ctx, uuid.New(), enrichment, domain.NewEnrichedEvent(time.Now(), "llm"))
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestListRecentAndUnenriched(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		stored, err := repo.Insert(ctx, newLead(base.Add(time.Duration(i)*time.Minute), "notes"))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		ids = append(ids, stored.ID)
	}
	blank := newLead(base.Add(10*time.Minute), "")
	blank.AINotes = nil
	if _, err := repo.Insert(ctx, blank); err != nil {
		t.Fatalf("Insert blank: %v", err)
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[1].ID != ids[2] {
		t.Fatalf("expected newest first, got %d leads", len(recent))
	}

	if _, err := repo.ApplyEnrichment(ctx, ids[0], domain.Enrichment{Location: strPtr("Austin")}, domain.NewEnrichedEvent(time.Now(), "llm")); err != nil {
		t.Fatalf("ApplyEnrichment: %v", err)
	}

	page, err := repo.ListUnenriched(ctx, Cursor{}, 1)
	if err != nil {
		t.Fatalf("ListUnenriched: %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[1] {
		t.Fatalf("expected second lead first, got %+v", page)
	}
	page, err = repo.ListUnenriched(ctx, CursorAfter(page[0]), 10)
	if err != nil {
		t.Fatalf("ListUnenriched: %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[2] {
		t.Fatalf("expected only the third lead, got %d leads", len(page))
	}
}
