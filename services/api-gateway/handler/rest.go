package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
)

// Assignments is the part of *assignment.Service the REST API calls.
type Assignments interface {
	CreateAssignment(ctx context.Context, in assignment.CreateInput) (*domain.Assignment, error)
	Transition(ctx context.Context, id string, t domain.Transition) (*domain.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.Assignment, error)
	GetReport(ctx context.Context, f assignment.ReportFilter) (map[string]domain.ReportSummary, error)
}

// Entities stores the hotels, rooms and housekeepers assignments refer to.
type Entities interface {
	CreateHotel(ctx context.Context, h *domain.Hotel) error
	GetHotel(ctx context.Context, id string) (*domain.Hotel, error)
	CreateRoom(ctx context.Context, r *domain.Room) error
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	ListRooms(ctx context.Context, hotelID string) ([]*domain.Room, error)
	CreateHousekeeper(ctx context.Context, h *domain.Housekeeper) error
	GetHousekeeper(ctx context.Context, id string) (*domain.Housekeeper, error)
	ListHousekeepers(ctx context.Context, hotelID string) ([]*domain.Housekeeper, error)
}

// Snapshots reads the scheduler's daily report.
type Snapshots interface {
	Latest(ctx context.Context) (*domain.DailyReport, error)
}

// AuditTrail lists the lifecycle events recorded for an assignment.
type AuditTrail interface {
	ListEvents(ctx context.Context, assignmentID string) ([]*domain.Event, error)
}

// REST serves the HTTP API.
type REST struct {
	svc       Assignments
	entities  Entities
	snapshots Snapshots
	audit     AuditTrail
	checks    map[string]telemetry.ReadyCheck
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a REST handler.
type Option func(*REST)

// WithSnapshots enables GET /api/v1/reports/daily/latest.
func WithSnapshots(s Snapshots) Option { return func(h *REST) { h.snapshots = s } }

// WithAuditTrail enables GET /api/v1/assignments/{id}/events.
func WithAuditTrail(a AuditTrail) Option { return func(h *REST) { h.audit = a } }

// WithReadyChecks sets the dependencies checked by /readyz.
func WithReadyChecks(c map[string]telemetry.ReadyCheck) Option {
	return func(h *REST) { h.checks = c }
}

func WithClock(now func() time.Time) Option { return func(h *REST) { h.now = now } }

// NewREST creates a new REST handler.
func NewREST(svc Assignments, entities Entities, logger *slog.Logger, opts ...Option) *REST {
	h := &REST{svc: svc, entities: entities, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the API on r. transition wraps the state-changing
// assignment endpoints, typically with a rate limiter; nil leaves them bare.
func (h *REST) Routes(r chi.Router, transition func(http.Handler) http.Handler) {
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Get("/", h.ListAssignments)
			r.Get("/{id}", h.GetAssignment)
			r.Get("/{id}/events", h.ListAssignmentEvents)
			r.Group(func(r chi.Router) {
				if transition != nil {
					r.Use(transition)
				}
				r.Post("/{id}/{event}", h.TransitionAssignment)
				r.Put("/{id}/{event}", h.TransitionAssignment)
			})
		})

		r.Get("/reports", h.GetReport)
		r.Get("/reports/export", h.ExportReport)
		r.Get("/reports/daily/latest", h.GetLatestDailyReport)

		r.Post("/hotels", h.CreateHotel)
		r.Get("/hotels/{id}", h.GetHotel)
		r.Get("/hotels/{id}/rooms", h.ListRooms)
		r.Get("/hotels/{id}/housekeepers", h.ListHousekeepers)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms/{id}", h.GetRoom)

		r.Post("/housekeepers", h.CreateHousekeeper)
		r.Get("/housekeepers", h.ListHousekeepers)
		r.Get("/housekeepers/{id}", h.GetHousekeeper)
		r.Get("/housekeepers/{id}/assignments", h.ListHousekeeperAssignments)
		r.Get("/housekeepers/{id}/schedule.ics", h.HousekeeperSchedule)
	})
}

// Healthz handles GET /healthz.
func (h *REST) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz by checking every configured dependency.
func (h *REST) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: name + " not ready", Code: codeUnavailable})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// decodeJSON reads a single JSON object from r and rejects unknown fields,
// so clients cannot smuggle server-derived fields such as status.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &domain.InvalidInputError{Reason: "request body too large"}
		}
		return &domain.InvalidInputError{Reason: "malformed JSON body: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &domain.InvalidInputError{Reason: "body must contain a single JSON object"}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
