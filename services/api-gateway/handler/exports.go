package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/export"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportReport handles GET /api/v1/reports/export?format=xlsx|pdf with the
// same filters as GetReport.
func (h *REST) ExportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		h.writeError(w, r, &domain.InvalidInputError{Field: "format", Reason: "must be xlsx or pdf"})
		return
	}
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
	housekeepers, err := h.entities.ListHousekeepers(r.Context(), "")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	names := make(map[string]string, len(housekeepers))
	for _, hk := range housekeepers {
		names[hk.ID] = hk.Name
	}

	rep := export.Report{Title: "Housekeeping report", From: from, To: to, Summaries: summaries, Names: names}
	var (
		buf         *bytes.Buffer
		contentType string
	)
	switch format {
	case "pdf":
		buf, err = export.PDF(rep)
		contentType = contentTypePDF
	default:
		buf, err = export.XLSX(rep)
		contentType = contentTypeXLSX
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := "housekeeping-report-" + h.now().UTC().Format("20060102") + "." + format
	writeFile(w, contentType, filename, buf.Bytes())
}

// HousekeeperSchedule handles GET /api/v1/housekeepers/{id}/schedule.ics.
// Query: startDate, endDate.
func (h *REST) HousekeeperSchedule(w http.ResponseWriter, r *http.Request) {
	hk, err := h.entities.GetHousekeeper(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.svc.ListAssignments(r.Context(), domain.AssignmentFilter{
		HousekeeperID: hk.ID,
		StartFrom:     from,
		StartTo:       to,
		Limit:         maxListLimit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rooms, err := h.entities.ListRooms(r.Context(), hk.HotelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	numbers := make(map[string]string, len(rooms))
	for _, room := range rooms {
		numbers[room.ID] = room.Number
	}

	body := export.ICS(export.Schedule{
		Housekeeper: hk,
		Rooms:       numbers,
		Assignments: list,
		Now:         h.now(),
	})
	writeFile(w, contentTypeICS, "schedule-"+hk.ID+".ics", []byte(body))
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
