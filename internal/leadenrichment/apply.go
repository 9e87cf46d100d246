package leadenrichment

import (
	"context"
	"errors"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/repository"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/google/uuid"
)

// EventSource labels the enriched event log entry.
const EventSource = "llm"

// Extractor produces enrichment values for call text.
type Extractor interface {
	Enabled() bool
	Extract(ctx context.Context, summary, transcript string) *domain.Enrichment
}

// LeadUpdater persists an enrichment result.
type LeadUpdater interface {
	ApplyEnrichment(ctx context.Context, id uuid.UUID, enrichment domain.Enrichment, entry domain.EventLogEntry) (domain.Lead, error)
}

// Invalidator drops cached read models after a lead changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Applier runs extraction for a stored lead and merges the result.
type Applier struct {
	extractor Extractor
	repo      LeadUpdater
	cache     Invalidator
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewApplier creates an applier. cache and m may be nil.
func NewApplier(extractor Extractor, repo LeadUpdater, cache Invalidator, m *metrics.Metrics, log *logger.Logger) *Applier {
	return &Applier{
		extractor: extractor,
		repo:      repo,
		cache:     cache,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// Apply enriches lead at most once. On any failure the lead is returned
// unchanged together with the outcome label.
func (a *Applier) Apply(ctx context.Context, lead domain.Lead, summary, transcript string) (domain.Lead, string) {
	log := a.log.WithContext(ctx)

	if a.extractor == nil || !a.extractor.Enabled() || lead.Enrichment != nil {
		a.metrics.Enrichment(metrics.EnrichmentSkipped)
		return lead, metrics.EnrichmentSkipped
	}

	result := a.extractor.Extract(ctx, summary, transcript)
	if result.IsEmpty() {
		a.metrics.Enrichment(metrics.EnrichmentEmpty)
		return lead, metrics.EnrichmentEmpty
	}

	updated, err := a.repo.ApplyEnrichment(ctx, lead.ID, *result, domain.NewEnrichedEvent(a.now(), EventSource))
	switch {
	case errors.Is(err, repository.ErrAlreadyEnriched):
		log.Info("lead already enriched", "leadId", lead.ID)
		a.metrics.Enrichment(metrics.EnrichmentConflict)
		return lead, metrics.EnrichmentConflict
	case err != nil:
		log.DatabaseError("apply_enrichment", err)
		a.metrics.Enrichment(metrics.EnrichmentFailed)
		return lead, metrics.EnrichmentFailed
	}

	if a.cache != nil {
		if err := a.cache.Invalidate(ctx); err != nil {
			log.Warn("dashboard cache invalidation failed", "error", err)
		}
	}
	log.Info("lead enriched", "leadId", lead.ID)
	a.metrics.Enrichment(metrics.EnrichmentApplied)
	return updated, metrics.EnrichmentApplied
}
