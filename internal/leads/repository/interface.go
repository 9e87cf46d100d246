package repository

import (
	"context"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Lead, error)
}

// LeadWriter provides the two writes a lead ever sees.
type LeadWriter interface {
	Insert(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	ApplyEnrichment(ctx context.Context, id uuid.UUID, enrichment domain.Enrichment, entry domain.EventLogEntry) (domain.Lead, error)
}

// BackfillReader pages through leads that were never enriched.
type BackfillReader interface {
	ListUnenriched(ctx context.Context, after Cursor, limit int) ([]domain.Lead, error)
}

// LeadsRepository is the full repository surface.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	BackfillReader
}

// Cursor is a keyset position ordered by creation time then id.
// The zero value starts from the beginning.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorAfter returns the cursor positioned on lead.
func CursorAfter(lead domain.Lead) Cursor {
	return Cursor{CreatedAt: lead.CreatedAt, ID: lead.ID}
}

// Compile-time check that Repository implements LeadsRepository.
var _ LeadsRepository = (*Repository)(nil)
