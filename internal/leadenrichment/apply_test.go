package leadenrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/repository"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/google/uuid"
)

type fakeExtractor struct {
	enabled bool
	result  *domain.Enrichment
	calls   int
}

func (f *fakeExtractor) Enabled() bool { return f.enabled }

func (f *fakeExtractor) Extract(ctx context.Context, summary, transcript string) *domain.Enrichment {
	f.calls++
	return f.result
}

type fakeUpdater struct {
	err     error
	calls   int
	entries []domain.EventLogEntry
}

func (f *fakeUpdater) ApplyEnrichment(ctx context.Context, id uuid.UUID, e domain.Enrichment, entry domain.EventLogEntry) (domain.Lead, error) {
	f.calls++
	f.entries = append(f.entries, entry)
	if f.err != nil {
		return domain.Lead{}, f.err
	}
	return domain.ApplyEnrichment(domain.Lead{ID: id}, &e), nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return nil
}

func strPtr(s string) *string { return &s }

func TestApplyOutcomes(t *testing.T) {
	found := &domain.Enrichment{Location: strPtr("Denver")}

	tests := []struct {
		name        string
		extractor   *fakeExtractor
		updaterErr  error
		lead        domain.Lead
		want        string
		wantUpdates int
	}{
		{name: "disabled", extractor: &fakeExtractor{}, want: metrics.EnrichmentSkipped},
		{name: "already enriched", extractor: &fakeExtractor{enabled: true, result: found}, lead: domain.Lead{Enrichment: found}, want: metrics.EnrichmentSkipped},
		{name: "nothing found", extractor: &fakeExtractor{enabled: true}, want: metrics.EnrichmentEmpty},
		{name: "all null", extractor: &fakeExtractor{enabled: true, result: &domain.Enrichment{}}, want: metrics.EnrichmentEmpty},
		{name: "applied", extractor: &fakeExtractor{enabled: true, result: found}, want: metrics.EnrichmentApplied, wantUpdates: 1},
		{name: "conflict", extractor: &fakeExtractor{enabled: true, result: found}, updaterErr: repository.ErrAlreadyEnriched, want: metrics.EnrichmentConflict, wantUpdates: 1},
		{name: "store failure", extractor: &fakeExtractor{enabled: true, result: found}, updaterErr: errors.New("db down"), want: metrics.EnrichmentFailed, wantUpdates: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := &fakeUpdater{err: tt.updaterErr}
			cache := &fakeInvalidator{}
			applier := NewApplier(tt.extractor, updater, cache, metrics.New(), logger.Discard())

			lead := tt.lead
			lead.ID = uuid.New()
			lead.FirstName = strPtr("Jane")

			got, outcome := applier.Apply(context.Background(), lead, "summary", "transcript")
			if outcome != tt.want {
				t.Fatalf("outcome = %q, want %q", outcome, tt.want)
			}
			if updater.calls != tt.wantUpdates {
				t.Fatalf("updates = %d, want %d", updater.calls, tt.wantUpdates)
			}

			if outcome == metrics.EnrichmentApplied {
				if got.Location == nil || *got.Location != "Denver" {
					t.Fatalf("expected merged lead, got %+v", got)
				}
				if updater.entries[0].Type != domain.EventEnriched || updater.entries[0].Source != EventSource {
					t.Fatalf("unexpected event entry %+v", updater.entries[0])
				}
				if cache.calls != 1 {
					t.Fatalf("expected cache invalidation after enrichment")
				}
				return
			}
			if got.FirstName == nil || *got.FirstName != "Jane" || got.ID != lead.ID {
				t.Fatalf("lead must be returned unchanged, got %+v", got)
			}
			if cache.calls != 0 {
				t.Fatalf("cache must not be invalidated without a change")
			}
		})
	}
}
