package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ─── Assignment service ──────────────────────────────────────────────────────

	AssignmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "assignment",
		Name:      "created_total",
		Help:      "Total assignments created.",
	})

	AssignmentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "assignment",
		Name:      "transitions_total",
		Help:      "Assignment transitions, labelled by transition and outcome.",
	}, []string{"transition", "outcome"})

	AssignmentConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "assignment",
		Name:      "conflicts_total",
		Help:      "Conditional update conflicts that triggered a fresh-read retry.",
	}, []string{"transition"})

	CleaningMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hotelrover",
		Subsystem: "assignment",
		Name:      "cleaning_minutes",
		Help:      "Recorded cleaning duration in whole minutes at finish.",
		Buckets:   []float64{5, 10, 15, 20, 30, 45, 60, 90, 120},
	})

	// ─── API Gateway ─────────────────────────────────────────────────────────────

	APIRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "api",
		Name:      "rate_limited_total",
		Help:      "Transition requests rejected by the rate limiter.",
	})

	// ─── Notifier ────────────────────────────────────────────────────────────────

	NotifierEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "notifier",
		Name:      "events_processed_total",
		Help:      "Lifecycle events processed, labelled by event type and result.",
	}, []string{"event_type", "result"})

	NotifierEventsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hotelrover",
		Subsystem: "notifier",
		Name:      "events_inflight",
		Help:      "Events currently being handled.",
	})

	NotifierHandleDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelrover",
		Subsystem: "notifier",
		Name:      "handle_duration_seconds",
		Help:      "Time spent delivering a notification in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"event_type"})

	NotifierRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "notifier",
		Name:      "retries_total",
		Help:      "Total notification retry attempts.",
	}, []string{"event_type"})

	NotifierDLQTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "notifier",
		Name:      "dlq_total",
		Help:      "Total events forwarded to the dead-letter queue.",
	}, []string{"event_type"})

	// ─── Scheduler ───────────────────────────────────────────────────────────────

	SchedulerSnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelrover",
		Subsystem: "scheduler",
		Name:      "report_snapshots_total",
		Help:      "Daily report snapshots attempted, labelled by result.",
	}, []string{"result"})
)
