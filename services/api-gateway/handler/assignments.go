package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

type createAssignmentRequest struct {
	HousekeeperID string `json:"housekeeperId"`
	RoomID        string `json:"roomId"`
	HotelID       string `json:"hotelId"`
	Task          string `json:"task"`
}

// CreateAssignment handles POST /api/v1/assignments.
func (h *REST) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.CreateAssignment(r.Context(), assignment.CreateInput{
		HousekeeperID: req.HousekeeperID,
		RoomID:        req.RoomID,
		HotelID:       req.HotelID,
		Task:          req.Task,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/assignments/"+a.ID)
	writeJSON(w, http.StatusCreated, a)
}

// GetAssignment handles GET /api/v1/assignments/{id}.
func (h *REST) GetAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAssignments handles GET /api/v1/assignments.
// Query: housekeeperId, status (comma separated), startDate, endDate, limit.
func (h *REST) ListAssignments(w http.ResponseWriter, r *http.Request) {
	f, err := assignmentFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f.HousekeeperID = r.URL.Query().Get("housekeeperId")
	h.listAssignments(w, r, f)
}

// ListHousekeeperAssignments handles GET /api/v1/housekeepers/{id}/assignments.
func (h *REST) ListHousekeeperAssignments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.entities.GetHousekeeper(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := assignmentFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f.HousekeeperID = id
	h.listAssignments(w, r, f)
}

func (h *REST) listAssignments(w http.ResponseWriter, r *http.Request, f domain.AssignmentFilter) {
	list, err := h.svc.ListAssignments(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Assignment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func assignmentFilter(r *http.Request) (domain.AssignmentFilter, error) {
	var f domain.AssignmentFilter
	var err error
	if f.Statuses, err = parseStatuses(r); err != nil {
		return f, err
	}
	if f.StartFrom, f.StartTo, err = parseRange(r); err != nil {
		return f, err
	}
	if f.Limit, err = parseLimit(r); err != nil {
		return f, err
	}
	return f, nil
}

// TransitionAssignment handles POST and PUT /api/v1/assignments/{id}/{event}
// where event is start, finish (or complete), inspect or reopen.
func (h *REST) TransitionAssignment(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")
	t, ok := parseTransition(event)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown transition " + event, Code: codeNotFound})
		return
	}

	a, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListAssignmentEvents handles GET /api/v1/assignments/{id}/events.
func (h *REST) ListAssignmentEvents(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "audit trail is not configured", Code: codeUnavailable})
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.svc.GetAssignment(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	events, err := h.audit.ListEvents(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
