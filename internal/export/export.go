// Package export renders housekeeping reports and schedules as files:
// spreadsheets and PDFs for managers, iCalendar feeds for housekeepers.
package export

import (
	"sort"
	"time"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// Report is a rendered-ready report. Names maps housekeeper IDs to display
// names; IDs without a name are printed as-is.
type Report struct {
	Title     string
	From      *time.Time
	To        *time.Time
	Summaries map[string]domain.ReportSummary
	Names     map[string]string
}

type row struct {
	name string
	domain.ReportSummary
}

// rows orders summaries by display name, then ID.
func (r Report) rows() []row {
	out := make([]row, 0, len(r.Summaries))
	for id, s := range r.Summaries {
		name := r.Names[id]
		if name == "" {
			name = id
		}
		out = append(out, row{name: name, ReportSummary: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].HousekeeperID < out[j].HousekeeperID
	})
	return out
}

func (r Report) totals() (rooms, minutes int) {
	for _, s := range r.Summaries {
		rooms += s.TotalRooms
		minutes += s.TotalTime
	}
	return rooms, minutes
}

func (r Report) period() string {
	switch {
	case r.From == nil && r.To == nil:
		return "all time"
	case r.From == nil:
		return "until " + r.To.UTC().Format(time.DateOnly)
	case r.To == nil:
		return "since " + r.From.UTC().Format(time.DateOnly)
	default:
		return r.From.UTC().Format(time.DateOnly) + " to " + r.To.UTC().Format(time.DateOnly)
	}
}
