package leadenrichment

import (
	"context"
	"strings"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/internal/leads/repository"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/tidwall/gjson"
)

const (
	defaultBatchSize = 50
	defaultDelay     = 300 * time.Millisecond
)

// LeadApplier enriches one stored lead.
type LeadApplier interface {
	Apply(ctx context.Context, lead domain.Lead, summary, transcript string) (domain.Lead, string)
}

// BackfillStats counts what a backfill run did.
type BackfillStats struct {
	Processed int
	Applied   int
	Failed    int
}

// Backfill enriches stored leads that never got enrichment, oldest first.
type Backfill struct {
	reader    repository.BackfillReader
	applier   LeadApplier
	log       *logger.Logger
	BatchSize int
	Delay     time.Duration
	sleep     func(context.Context, time.Duration) error
}

// NewBackfill creates a backfill with default batch size and pacing.
func NewBackfill(reader repository.BackfillReader, applier LeadApplier, log *logger.Logger) *Backfill {
	return &Backfill{
		reader:    reader,
		applier:   applier,
		log:       log,
		BatchSize: defaultBatchSize,
		Delay:     defaultDelay,
		sleep:     sleepCtx,
	}
}

// Run pages through unenriched leads until none are left or ctx ends.
// Per-lead failures are counted and skipped.
func (b *Backfill) Run(ctx context.Context) (BackfillStats, error) {
	var stats BackfillStats
	var cursor repository.Cursor

	for {
		leads, err := b.reader.ListUnenriched(ctx, cursor, b.BatchSize)
		if err != nil {
			return stats, err
		}
		if len(leads) == 0 {
			return stats, nil
		}

		for _, lead := range leads {
			cursor = repository.CursorAfter(lead)
			stats.Processed++

			summary, transcript := BackfillInputs(lead)
			_, outcome := b.applier.Apply(ctx, lead, summary, transcript)
			switch outcome {
			case metrics.EnrichmentApplied:
				stats.Applied++
			case metrics.EnrichmentFailed:
				stats.Failed++
			}
			b.log.Info("lead backfilled", "leadId", lead.ID, "outcome", outcome)

			if err := b.sleep(ctx, b.Delay); err != nil {
				return stats, err
			}
		}
	}
}

// BackfillInputs rebuilds the extraction input of a stored lead. The summary
// is the stored notes or intent; the transcript comes from the raw vendor
// payload kept on the created event.
func BackfillInputs(lead domain.Lead) (summary, transcript string) {
	for _, value := range []*string{lead.AINotes, lead.Intent} {
		if value != nil && strings.TrimSpace(*value) != "" {
			summary = *value
			break
		}
	}

	for _, entry := range lead.EventLogs {
		if entry.Type != domain.EventCreated || len(entry.Raw) == 0 {
			continue
		}
		if t := gjson.GetBytes(entry.Raw, "call.transcript"); t.Type == gjson.String {
			transcript = t.String()
		}
		break
	}
	return summary, transcript
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
