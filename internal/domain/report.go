package domain

import "time"

// ReportSummary is the per-housekeeper aggregate of completed assignments.
// It is derived on every query and never stored as a running total.
type ReportSummary struct {
	HousekeeperID string `json:"housekeeperId"`
	TotalRooms    int    `json:"totalRooms"`
	TotalTime     int    `json:"totalTime"`
	AverageTime   int    `json:"averageTime"`
}

// Aggregate folds assignments into summaries keyed by housekeeper ID.
// Assignments that are not Clean or Inspected are ignored, so a housekeeper
// without completed work has no entry at all.
func Aggregate(assignments []*Assignment) map[string]ReportSummary {
	out := make(map[string]ReportSummary)
	for _, a := range assignments {
		if a == nil || !a.Status.IsCompleted() {
			continue
		}
		s := out[a.HousekeeperID]
		s.HousekeeperID = a.HousekeeperID
		s.TotalRooms++
		s.TotalTime += a.TotalMinutes
		out[a.HousekeeperID] = s
	}
	for id, s := range out {
		s.AverageTime = divRoundHalfUp(s.TotalTime, s.TotalRooms)
		out[id] = s
	}
	return out
}

// divRoundHalfUp returns n/d rounded to the nearest integer, ties up.
// n >= 0 and d > 0.
func divRoundHalfUp(n, d int) int {
	return (2*n + d) / (2 * d)
}

// DailyReport is a report computed for one UTC calendar day and kept as a
// snapshot by the scheduler.
type DailyReport struct {
	Date        string                   `json:"date"`
	From        time.Time                `json:"from"`
	To          time.Time                `json:"to"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Summaries   map[string]ReportSummary `json:"summaries"`
}

// DayBounds returns the first and last instants of the UTC day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return from, from.Add(24*time.Hour - time.Nanosecond)
}
