package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/leads.html"))

const (
	placeholder   = "-"
	unknownLead   = "Unknown"
	unknownType   = "unknown"
	createdLayout = "Jan 2, 15:04"
)

type pageView struct {
	GeneratedAt string
	Zone        string
	Stats       Stats
	AvgPriority string
	AvgIntent   string
	TopLead     string
	Rows        []rowView
}

type rowView struct {
	Created      string
	Name         string
	Phone        string
	Email        string
	Type         string
	Timeline     string
	Urgency      string
	UrgencyClass string
	Priority     string
	Intent       string
	Source       string
}

func newPageView(snap Snapshot, loc *time.Location) pageView {
	view := pageView{
		GeneratedAt: snap.GeneratedAt.In(loc).Format(createdLayout),
		Zone:        loc.String(),
		Stats:       snap.Stats,
		AvgPriority: formatAverage(snap.Stats.AvgPriority),
		AvgIntent:   formatAverage(snap.Stats.AvgIntent),
		Rows:        make([]rowView, 0, len(snap.Leads)),
	}
	if top := snap.Stats.TopLeadToday; top != nil {
		view.TopLead = leadName(*top)
	}
	for _, lead := range snap.Leads {
		view.Rows = append(view.Rows, newRowView(lead, loc))
	}
	return view
}

func newRowView(lead domain.Lead, loc *time.Location) rowView {
	row := rowView{
		Created:      lead.CreatedAt.In(loc).Format(createdLayout),
		Name:         leadName(lead),
		Phone:        deref(lead.Phone),
		Email:        deref(lead.Email),
		Type:         unknownType,
		Timeline:     placeholder,
		Urgency:      placeholder,
		UrgencyClass: "none",
		Priority:     formatScore(lead.PriorityScore),
		Intent:       formatScore(lead.IntentScore),
		Source:       lead.Source,
	}
	if lead.BuyerSeller != nil {
		row.Type = string(*lead.BuyerSeller)
	}
	if lead.Timeline != nil && *lead.Timeline != "" {
		row.Timeline = *lead.Timeline
	}
	if lead.Urgency != nil {
		row.Urgency = string(*lead.Urgency)
		row.UrgencyClass = string(*lead.Urgency)
	}
	if row.Source == "" {
		row.Source = placeholder
	}
	return row
}

func leadName(lead domain.Lead) string {
	if name := lead.DisplayName(); name != "" {
		return name
	}
	return unknownLead
}

func formatScore(score *int) string {
	if score == nil {
		return placeholder
	}
	return strconv.Itoa(*score)
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return placeholder
	}
	return fmt.Sprintf("%.1f", *avg)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
