// Package intake receives phone vendor webhooks and turns analyzed calls
// into stored leads.
package intake

import (
	"context"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/normalize"
	"github.com/jadu-codes/flow-layer-2/platform/apperr"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
)

// Response statuses.
const (
	StatusOK      = "ok"
	StatusIgnored = "ignored"
)

const (
	msgInvalidPayload = "Invalid payload"
	msgSaveFailed     = "Failed to save lead"
)

// LeadInserter stores a normalized lead.
type LeadInserter interface {
	Insert(ctx context.Context, lead domain.Lead) (domain.Lead, error)
}

// Enricher enriches a stored lead at most once and never fails.
type Enricher interface {
	Apply(ctx context.Context, lead domain.Lead, summary, transcript string) (domain.Lead, string)
}

// CacheInvalidator drops cached dashboard snapshots.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Result is the outcome of one intake request.
type Result struct {
	Status string
	Event  string
	Lead   *domain.Lead
}

// Service runs one webhook through parse, filter, normalize, insert and enrich.
type Service struct {
	repo       LeadInserter
	normalizer *normalize.Normalizer
	enricher   Enricher
	cache      CacheInvalidator
	metrics    *metrics.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates an intake service. enricher, cache and m may be nil.
func NewService(repo LeadInserter, normalizer *normalize.Normalizer, enricher Enricher, cache CacheInvalidator, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		normalizer: normalizer,
		enricher:   enricher,
		cache:      cache,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// Process handles one request body. A body that is not a JSON object is a
// bad request; a vendor event other than call_analyzed is ignored without
// touching the store; an insert failure is an internal error carrying the
// store message as details.
func (s *Service) Process(ctx context.Context, body []byte) (Result, error) {
	log := s.log.WithContext(ctx)

	payload, err := normalize.Parse(body)
	if err != nil {
		s.metrics.IntakeRequest(metrics.OutcomeInvalid, "unknown")
		return Result{}, apperr.Wrap(apperr.KindBadRequest, msgInvalidPayload, err).WithOp("intake.Process")
	}

	if vendor, ok := payload.(normalize.VendorPayload); ok && !vendor.Analyzed() {
		log.IntakeEvent(StatusIgnored, vendor.Event, "")
		s.metrics.IntakeRequest(metrics.OutcomeIgnored, normalize.KindVendor)
		return Result{Status: StatusIgnored, Event: vendor.Event}, nil
	}

	normalized := s.normalizer.Normalize(payload)
	lead := normalized.Lead
	now := s.now().UTC()
	lead.CreatedAt = now
	lead.EventLogs = []domain.EventLogEntry{domain.NewCreatedEvent(now, lead.Source, payload.RawBody())}

	stored, err := s.repo.Insert(ctx, lead)
	if err != nil {
		log.DatabaseError("insert_lead", err)
		s.metrics.IntakeRequest(metrics.OutcomeFailed, normalized.Kind)
		return Result{}, apperr.Wrap(apperr.KindInternal, msgSaveFailed, err).
			WithOp("intake.Process").
			WithDetails(err.Error())
	}
	s.invalidate(ctx)

	if s.enricher != nil {
		stored, _ = s.enricher.Apply(ctx, stored, normalized.Summary, normalized.Transcript)
	}

	event := ""
	if vendor, ok := payload.(normalize.VendorPayload); ok {
		event = vendor.Event
	}
	log.IntakeEvent(StatusOK, event, stored.ID.String())
	s.metrics.IntakeRequest(metrics.OutcomeStored, normalized.Kind)
	return Result{Status: StatusOK, Event: event, Lead: &stored}, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithContext(ctx).Warn("dashboard cache invalidation failed", "error", err)
	}
}
