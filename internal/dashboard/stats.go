// Package dashboard renders the most recent leads with aggregate stats.
// It only reads.
package dashboard

import (
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
)

// Stats are aggregates over one page of recent leads.
type Stats struct {
	Total        int          `json:"total"`
	Today        int          `json:"today"`
	AvgPriority  *float64     `json:"avg_priority"`
	AvgIntent    *float64     `json:"avg_intent"`
	HighUrgency  int          `json:"high_urgency"`
	TopLeadToday *domain.Lead `json:"top_lead_today"`
}

// ComputeStats aggregates leads as retrieved. "Today" is the calendar date of
// now in loc. Averages only count present scores and are nil when none are.
// The top lead of today maximizes priority plus intent; on a tie the lead
// retrieved first wins.
func ComputeStats(leads []domain.Lead, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}
	today := dateOf(now, loc)

	stats := Stats{Total: len(leads)}
	var prioritySum, intentSum, priorityCount, intentCount int
	topScore := -1

	for i := range leads {
		lead := &leads[i]
		if lead.PriorityScore != nil {
			prioritySum += *lead.PriorityScore
			priorityCount++
		}
		if lead.IntentScore != nil {
			intentSum += *lead.IntentScore
			intentCount++
		}
		if lead.Urgency != nil && *lead.Urgency == domain.UrgencyHigh {
			stats.HighUrgency++
		}
		if dateOf(lead.CreatedAt, loc) != today {
			continue
		}
		stats.Today++
		if score := lead.CombinedScore(); score > topScore {
			topScore = score
			stats.TopLeadToday = lead
		}
	}

	stats.AvgPriority = average(prioritySum, priorityCount)
	stats.AvgIntent = average(intentSum, intentCount)
	return stats
}

func average(sum, count int) *float64 {
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}

func dateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
