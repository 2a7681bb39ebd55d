package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/redis"
)

// GetReport handles GET /api/v1/reports?startDate=&endDate=&housekeeperId=.
// The summaries are returned as an array ordered by housekeeper ID.
func (h *REST) GetReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summaries, err := h.svc.GetReport(r.Context(), assignment.ReportFilter{
		StartDate:     from,
		EndDate:       to,
		HousekeeperID: r.URL.Query().Get("housekeeperId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sortedSummaries(summaries))
}

// GetLatestDailyReport handles GET /api/v1/reports/daily/latest.
func (h *REST) GetLatestDailyReport(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "daily snapshots are not configured", Code: codeUnavailable})
		return
	}
	rep, err := h.snapshots.Latest(r.Context())
	if errors.Is(err, redis.ErrNoSnapshot) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no daily report has been generated yet", Code: codeNotFound})
		return
	}
	if err != nil {
		h.writeError(w, r, &domain.UnavailableError{Op: "read daily report", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, dailyReportResponse{
		Date:        rep.Date,
		From:        rep.From.Format(timeLayout),
		To:          rep.To.Format(timeLayout),
		GeneratedAt: rep.GeneratedAt.Format(timeLayout),
		Summaries:   sortedSummaries(rep.Summaries),
	})
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type dailyReportResponse struct {
	Date        string                 `json:"date"`
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	GeneratedAt string                 `json:"generatedAt"`
	Summaries   []domain.ReportSummary `json:"summaries"`
}

func sortedSummaries(m map[string]domain.ReportSummary) []domain.ReportSummary {
	out := make([]domain.ReportSummary, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HousekeeperID < out[j].HousekeeperID })
	return out
}
