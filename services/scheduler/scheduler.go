package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/kafka"
	redisstore "github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
)

// DefaultSchedule runs shortly after midnight UTC, once late finishes from
// the previous day have landed.
const DefaultSchedule = "5 0 * * *"

// ReportSource computes housekeeper reports. *assignment.Service satisfies it.
type ReportSource interface {
	GetReport(ctx context.Context, f assignment.ReportFilter) (map[string]domain.ReportSummary, error)
}

// Leaser grants the right to produce a snapshot to one replica at a time.
type Leaser interface {
	Acquire(ctx context.Context) (bool, error)
}

// Scheduler produces the daily report snapshot on a cron schedule.
type Scheduler struct {
	reports   ReportSource
	snapshots redisstore.SnapshotStore
	producer  kafka.Producer
	lease     Leaser
	schedule  cron.Schedule
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(now func() time.Time) Option { return func(s *Scheduler) { s.now = now } }
func WithLogger(l *slog.Logger) Option      { return func(s *Scheduler) { s.logger = l } }

// New validates expr, a standard five-field cron expression evaluated in UTC.
func New(
	expr string,
	reports ReportSource,
	snapshots redisstore.SnapshotStore,
	producer kafka.Producer,
	lease Leaser,
	opts ...Option,
) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	s := &Scheduler{
		reports:   reports,
		snapshots: snapshots,
		producer:  producer,
		lease:     lease,
		schedule:  schedule,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run fires the snapshot job on schedule until ctx is cancelled, then waits
// for a running job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("daily snapshot failed", slog.String("error", err.Error()))
		}
	}))
	c.Start()
	s.logger.Info("scheduler started", slog.Time("next_run", s.schedule.Next(s.now().UTC())))

	<-ctx.Done()
	<-c.Stop().Done()
}

// RunOnce snapshots the previous UTC day if this replica holds the lease.
// It returns nil, nil when another replica is the leader.
func (s *Scheduler) RunOnce(ctx context.Context) (*domain.DailyReport, error) {
	ok, err := s.lease.Acquire(ctx)
	if err != nil {
		telemetry.SchedulerSnapshotsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		s.logger.Info("not the leader, skipping snapshot")
		telemetry.SchedulerSnapshotsTotal.WithLabelValues("skipped").Inc()
		return nil, nil
	}
	return s.Snapshot(ctx, s.now().UTC().AddDate(0, 0, -1))
}

// Snapshot computes, stores and publishes the report for the UTC day
// containing day. It does not consult the lease, so it also serves backfills.
func (s *Scheduler) Snapshot(ctx context.Context, day time.Time) (*domain.DailyReport, error) {
	from, to := domain.DayBounds(day)
	date := from.Format(time.DateOnly)

	ctx, span := otel.Tracer("scheduler").Start(ctx, "scheduler.snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("report.date", date))

	fail := func(stage string, err error) (*domain.DailyReport, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		telemetry.SchedulerSnapshotsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s for %s: %w", stage, date, err)
	}

	summaries, err := s.reports.GetReport(ctx, assignment.ReportFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return fail("compute report", err)
	}
	report := &domain.DailyReport{
		Date:        date,
		From:        from,
		To:          to,
		GeneratedAt: s.now().UTC(),
		Summaries:   summaries,
	}

	if err := s.snapshots.SaveDaily(ctx, report); err != nil {
		return fail("store snapshot", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fail("marshal snapshot", err)
	}
	if s.producer != nil {
		if err := s.producer.Publish(ctx, kafka.TopicDailyReports, date, payload); err != nil {
			// The snapshot is already readable from Redis; consumers of the topic miss one day.
			s.logger.Error("failed to publish daily report",
				slog.String("date", date),
				slog.String("error", err.Error()),
			)
		}
	}

	telemetry.SchedulerSnapshotsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("daily report snapshot stored",
		slog.String("date", date),
		slog.Int("housekeepers", len(summaries)),
	)
	return report, nil
}
