package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/retry"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
)

// Store is the entity store contract the service depends on.
type Store interface {
	// FindByID returns nil when the entity exists and a *domain.NotFoundError otherwise.
	FindByID(ctx context.Context, kind domain.EntityKind, id string) error
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	// ConditionalUpdateAssignment writes p only if the stored record still has
	// status expected at the given version, bumping the version; otherwise it
	// returns *domain.ConflictError.
	ConditionalUpdateAssignment(ctx context.Context, id string, expected domain.Status, version int64, p domain.Patch) (*domain.Assignment, error)
	QueryAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.Assignment, error)
}

// EventPublisher receives lifecycle events after each committed write.
type EventPublisher interface {
	Publish(ctx context.Context, ev *domain.Event) error
}

// Service orchestrates assignment creation, transitions and reporting.
type Service struct {
	store          Store
	publisher      EventPublisher
	publishTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// DefaultPublishTimeout bounds how long a committed write waits on the event
// broker before the response is returned.
const DefaultPublishTimeout = 2 * time.Second

// Option configures a Service.
type Option func(*Service)

func WithPublisher(p EventPublisher) Option  { return func(s *Service) { s.publisher = p } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithLogger(l *slog.Logger) Option      { return func(s *Service) { s.logger = l } }

// WithPublishTimeout overrides DefaultPublishTimeout. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewService constructs a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the client-supplied fields of a new assignment.
// Status, timestamps and totalMinutes are always server-derived.
type CreateInput struct {
	HousekeeperID string
	RoomID        string
	HotelID       string
	Task          string
}

func (in CreateInput) validate() error {
	fields := []struct{ name, value string }{
		{"housekeeperId", in.HousekeeperID},
		{"roomId", in.RoomID},
		{"hotelId", in.HotelID},
		{"task", in.Task},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &domain.InvalidInputError{Field: f.name, Reason: "is required"}
		}
	}
	return nil
}

// CreateAssignment validates the referenced entities and persists a new Dirty assignment.
func (s *Service) CreateAssignment(ctx context.Context, in CreateInput) (*domain.Assignment, error) {
	ctx, span := otel.Tracer("assignment").Start(ctx, "assignment.create")
	defer span.End()

	if err := in.validate(); err != nil {
		span.SetStatus(codes.Error, "invalid input")
		return nil, err
	}

	refs := []struct {
		kind domain.EntityKind
		id   string
	}{
		{domain.KindHousekeeper, in.HousekeeperID},
		{domain.KindRoom, in.RoomID},
		{domain.KindHotel, in.HotelID},
	}
	for _, ref := range refs {
		if err := s.store.FindByID(ctx, ref.kind, ref.id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reference lookup failed")
			return nil, err
		}
	}

	a := &domain.Assignment{
		ID:            uuid.New().String(),
		HousekeeperID: in.HousekeeperID,
		RoomID:        in.RoomID,
		HotelID:       in.HotelID,
		Task:          strings.TrimSpace(in.Task),
		Status:        domain.StatusDirty,
		CreatedAt:     s.now().UTC(),
		Version:       1,
	}
	span.SetAttributes(attribute.String("assignment.id", a.ID))

	if err := s.store.CreateAssignment(ctx, a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	telemetry.AssignmentsCreated.Inc()
	s.logger.Info("assignment created",
		slog.String("assignment_id", a.ID),
		slog.String("housekeeper_id", a.HousekeeperID),
		slog.String("room_id", a.RoomID),
	)
	s.emit(ctx, domain.EventCreated, a)
	return a, nil
}

// StartCleaning moves a Dirty assignment to In Progress.
func (s *Service) StartCleaning(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.Transition(ctx, id, domain.TransitionStart)
}

// FinishCleaning moves an In Progress assignment to Clean and records its duration.
func (s *Service) FinishCleaning(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.Transition(ctx, id, domain.TransitionFinish)
}

// InspectAssignment moves a Clean assignment to Inspected.
func (s *Service) InspectAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.Transition(ctx, id, domain.TransitionInspect)
}

// ReopenAssignment is the administrative reset back to Dirty.
func (s *Service) ReopenAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.Transition(ctx, id, domain.TransitionReopen)
}

// Transition applies t to the assignment with a read-modify-write guarded by
// the store's conditional update. A Conflict is retried once with a fresh
// read; if the fresh read shows t is no longer legal, the caller gets the
// original Conflict since another writer won the race.
func (s *Service) Transition(ctx context.Context, id string, t domain.Transition) (*domain.Assignment, error) {
	ctx, span := otel.Tracer("assignment").Start(ctx, "assignment."+string(t))
	defer span.End()
	span.SetAttributes(attribute.String("assignment.id", id))

	log := s.logger.With(
		slog.String("assignment_id", id),
		slog.String("transition", string(t)),
	)

	var (
		updated  *domain.Assignment
		conflict error
	)
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: 2,
		Retryable:   isConflict,
		OnRetry: func(attempt int, err error) {
			telemetry.AssignmentConflicts.WithLabelValues(string(t)).Inc()
			log.Warn("conditional update conflict, retrying with fresh read",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		},
	}, func(attempt int) error {
		cur, err := s.store.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		patch, err := domain.Next(cur, t, s.now().UTC())
		if err != nil {
			var invalid *domain.InvalidTransitionError
			if attempt > 1 && conflict != nil && errors.As(err, &invalid) {
				return conflict
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		updated, err = s.store.ConditionalUpdateAssignment(ctx, id, cur.Status, cur.Version, patch)
		if isConflict(err) {
			conflict = err
		}
		return err
	})
	if err != nil {
		telemetry.AssignmentTransitions.WithLabelValues(string(t), outcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		log.Info("transition rejected", slog.String("error", err.Error()))
		return nil, err
	}

	telemetry.AssignmentTransitions.WithLabelValues(string(t), "ok").Inc()
	if t == domain.TransitionFinish {
		telemetry.CleaningMinutes.Observe(float64(updated.TotalMinutes))
	}
	log.Info("assignment transitioned",
		slog.String("status", string(updated.Status)),
		slog.Int("total_minutes", updated.TotalMinutes),
	)
	s.emit(ctx, t.EventType(), updated)
	return updated, nil
}

// GetAssignment returns a single assignment.
func (s *Service) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.store.GetAssignment(ctx, id)
}

// ListAssignments returns assignments matching f.
func (s *Service) ListAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.Assignment, error) {
	if f.StartFrom != nil && f.StartTo != nil && f.StartTo.Before(*f.StartFrom) {
		return nil, &domain.InvalidTimeRangeError{Start: *f.StartFrom, End: *f.StartTo}
	}
	return s.store.QueryAssignments(ctx, f)
}

// ReportFilter narrows a report. Nil or empty fields do not constrain it.
type ReportFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	HousekeeperID string
}

// GetReport aggregates completed assignments matching f into per-housekeeper summaries.
func (s *Service) GetReport(ctx context.Context, f ReportFilter) (map[string]domain.ReportSummary, error) {
	ctx, span := otel.Tracer("assignment").Start(ctx, "assignment.report")
	defer span.End()

	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, &domain.InvalidTimeRangeError{Start: *f.StartDate, End: *f.EndDate}
	}

	rows, err := s.store.QueryAssignments(ctx, domain.AssignmentFilter{
		HousekeeperID: f.HousekeeperID,
		Statuses:      []domain.Status{domain.StatusClean, domain.StatusInspected},
		StartFrom:     f.StartDate,
		StartTo:       f.EndDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("query assignments for report: %w", err)
	}
	span.SetAttributes(attribute.Int("report.rows", len(rows)))
	return domain.Aggregate(rows), nil
}

// emit publishes a lifecycle event. Failures are logged only: the write is
// already committed and the event stream is advisory.
func (s *Service) emit(ctx context.Context, typ domain.EventType, a *domain.Assignment) {
	if s.publisher == nil {
		return
	}
	ev := &domain.Event{
		ID:            uuid.New().String(),
		Type:          typ,
		AssignmentID:  a.ID,
		HousekeeperID: a.HousekeeperID,
		HotelID:       a.HotelID,
		RoomID:        a.RoomID,
		Status:        a.Status,
		TotalMinutes:  a.TotalMinutes,
		OccurredAt:    s.now().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.logger.Error("failed to publish assignment event",
			slog.String("assignment_id", a.ID),
			slog.String("event", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func isConflict(err error) bool {
	var c *domain.ConflictError
	return errors.As(err, &c)
}

// outcome labels a failed transition for metrics.
func outcome(err error) string {
	var (
		notFound *domain.NotFoundError
		invalid  *domain.InvalidTransitionError
		pre      *domain.PreconditionFailedError
		unavail  *domain.UnavailableError
	)
	switch {
	case isConflict(err):
		return "conflict"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid_transition"
	case errors.As(err, &pre):
		return "precondition_failed"
	case errors.As(err, &unavail):
		return "unavailable"
	default:
		return "error"
	}
}
