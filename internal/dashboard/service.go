package dashboard

import (
	"context"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/platform/apperr"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
)

// LeadLister reads the most recent leads, newest first.
type LeadLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Lead, error)
}

// Snapshot is one rendered page of the dashboard.
type Snapshot struct {
	Limit       int           `json:"limit"`
	GeneratedAt time.Time     `json:"generated_at"`
	Leads       []domain.Lead `json:"leads"`
	Stats       Stats         `json:"stats"`
}

// Service builds dashboard snapshots, reading through the cache when one is
// configured.
type Service struct {
	repo         LeadLister
	cache        *Cache
	loc          *time.Location
	defaultLimit int
	metrics      *metrics.Metrics
	log          *logger.Logger
	now          func() time.Time
}

// NewService creates a dashboard service. cache may be nil.
func NewService(repo LeadLister, cache *Cache, loc *time.Location, defaultLimit int, m *metrics.Metrics, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:         repo,
		cache:        cache,
		loc:          loc,
		defaultLimit: defaultLimit,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// Location is the zone used for "today" and for rendering times.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Snapshot returns the newest limit leads with their aggregates. A limit of
// zero selects the default. Cache failures are logged and fall back to the
// database.
func (s *Service) Snapshot(ctx context.Context, limit int) (Snapshot, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	now := s.now()

	if s.cache != nil {
		snap, hit, err := s.cache.Get(ctx, limit, now)
		if err != nil {
			s.log.WithContext(ctx).Warn("dashboard cache read failed", "error", err)
		}
		s.metrics.DashboardCache(hit)
		if hit {
			return snap, nil
		}
	}

	leads, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.log.DatabaseError("list_recent_leads", err)
		return Snapshot{}, apperr.Wrap(apperr.KindInternal, "Failed to load leads", err).WithOp("dashboard.Snapshot")
	}
	for i := range leads {
		leads[i].EventLogs = withoutRaw(leads[i].EventLogs)
	}

	snap := Snapshot{
		Limit:       limit,
		GeneratedAt: now,
		Leads:       leads,
		Stats:       ComputeStats(leads, now, s.loc),
	}

	if err := s.cache.Set(ctx, snap); err != nil {
		s.log.WithContext(ctx).Warn("dashboard cache write failed", "error", err)
	}
	return snap, nil
}

// withoutRaw drops the stored webhook bodies, which the dashboard never shows.
func withoutRaw(entries []domain.EventLogEntry) []domain.EventLogEntry {
	out := make([]domain.EventLogEntry, len(entries))
	for i, entry := range entries {
		entry.Raw = nil
		out[i] = entry
	}
	return out
}
