package notifier

import (
	"context"
	"log/slog"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/handlers"
	"github.com/Dhairyashah5122/project-hotelrover/internal/kafka"
	redisstore "github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/retry"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
)

// HeaderFailure carries the last delivery error on dead-lettered messages.
const HeaderFailure = "failure"

// EventRecorder appends lifecycle events to the audit trail. Recording the
// same event ID twice must be a no-op.
type EventRecorder interface {
	RecordEvent(ctx context.Context, ev *domain.Event) error
}

// Notifier consumes assignment lifecycle events, audits every one of them and
// sends the notification registered for its type.
type Notifier struct {
	consumer   kafka.Consumer
	producer   kafka.Producer
	recorder   EventRecorder
	registry   *handlers.Registry
	ledger     redisstore.DeliveryLedger
	instanceID string
	maxRetries int
	timeout    time.Duration
	baseDelay  time.Duration
	logger     *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithRetries(count int) Option                          { return func(n *Notifier) { n.maxRetries = count } }
func WithTimeout(d time.Duration) Option                    { return func(n *Notifier) { n.timeout = d } }
func WithLogger(l *slog.Logger) Option                      { return func(n *Notifier) { n.logger = l } }
func WithBaseDelay(d time.Duration) Option                  { return func(n *Notifier) { n.baseDelay = d } }
func WithDeliveryLedger(l redisstore.DeliveryLedger) Option { return func(n *Notifier) { n.ledger = l } }

// New constructs a Notifier. producer receives dead-lettered events.
func New(
	instanceID string,
	consumer kafka.Consumer,
	producer kafka.Producer,
	recorder EventRecorder,
	registry *handlers.Registry,
	opts ...Option,
) *Notifier {
	n := &Notifier{
		instanceID: instanceID,
		consumer:   consumer,
		producer:   producer,
		recorder:   recorder,
		registry:   registry,
		maxRetries: 3,
		timeout:    30 * time.Second,
		baseDelay:  time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run consumes events until ctx is cancelled. Messages are handled one at a
// time on the calling goroutine, so once Run returns nothing is in flight.
func (n *Notifier) Run(ctx context.Context) error {
	return n.consumer.Subscribe(ctx, n.processMessage)
}

// processMessage handles one Kafka message. It returns an error only when the
// audit write fails, leaving the offset uncommitted; delivery failures end in
// the DLQ and commit.
func (n *Notifier) processMessage(consumerCtx context.Context, msg kafka.Message) error {
	ev, err := kafka.DecodeEvent(msg)
	if err != nil {
		n.logger.Error("malformed event message, dead-lettering",
			slog.String("error", err.Error()),
			slog.Int64("offset", msg.Offset),
		)
		n.deadLetter(consumerCtx, string(msg.Key), msg.Value, msg.Headers, err)
		telemetry.NotifierDLQTotal.WithLabelValues("malformed").Inc()
		return nil
	}

	ctx, span := otel.Tracer("notifier").Start(consumerCtx, "notifier.process_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", ev.ID),
		attribute.String("event.type", string(ev.Type)),
		attribute.String("assignment.id", ev.AssignmentID),
	)

	log := n.logger.With(
		slog.String("event_id", ev.ID),
		slog.String("event_type", string(ev.Type)),
		slog.String("assignment_id", ev.AssignmentID),
		slog.String("notifier_id", n.instanceID),
	)
	typ := string(ev.Type)

	if err := n.recorder.RecordEvent(ctx, ev); err != nil {
		log.Error("failed to audit event", slog.String("error", err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit failed")
		telemetry.NotifierEventsProcessed.WithLabelValues(typ, "audit_failed").Inc()
		return err
	}

	h, ok := n.registry.Get(ev.Type)
	if !ok {
		log.Debug("event audited, no notification for this type")
		telemetry.NotifierEventsProcessed.WithLabelValues(typ, "audited").Inc()
		return nil
	}

	if n.ledger != nil {
		done, err := n.ledger.Delivered(ctx, ev.ID)
		if err != nil {
			log.Warn("delivery ledger unavailable, notifying anyway", slog.String("error", err.Error()))
		} else if done {
			log.Info("notification already delivered, skipping")
			telemetry.NotifierEventsProcessed.WithLabelValues(typ, "duplicate").Inc()
			return nil
		}
	}

	telemetry.NotifierEventsInFlight.Inc()
	defer telemetry.NotifierEventsInFlight.Dec()

	start := time.Now()
	attempts := 0
	execErr := retry.Do(ctx, retry.Config{
		MaxAttempts: n.maxRetries + 1,
		BaseDelay:   n.baseDelay,
		Retryable:   func(err error) bool { return !handlers.IsPermanent(err) },
		OnRetry: func(attempt int, retryErr error) {
			telemetry.NotifierRetriesTotal.WithLabelValues(typ).Inc()
			log.Warn("notification attempt failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", retryErr.Error()),
			)
		},
	}, func(attempt int) error {
		attempts = attempt
		// Handler timeouts are independent of consumer shutdown; spans stay parented here.
		execCtx, cancel := context.WithTimeout(trace.ContextWithSpan(context.Background(), span), n.timeout)
		defer cancel()
		return h.Handle(execCtx, ev)
	})

	elapsed := time.Since(start)
	telemetry.NotifierHandleDurationSeconds.WithLabelValues(typ).Observe(elapsed.Seconds())

	if execErr != nil {
		log.Error("notification failed, dead-lettering",
			slog.Int("attempts", attempts),
			slog.Bool("permanent", handlers.IsPermanent(execErr)),
			slog.String("error", execErr.Error()),
		)
		span.RecordError(execErr)
		span.SetStatus(codes.Error, "notification failed")
		n.deadLetter(ctx, ev.AssignmentID, msg.Value, msg.Headers, execErr)
		telemetry.NotifierEventsProcessed.WithLabelValues(typ, "dead").Inc()
		telemetry.NotifierDLQTotal.WithLabelValues(typ).Inc()
		return nil
	}

	if n.ledger != nil {
		if err := n.ledger.MarkDelivered(ctx, ev.ID); err != nil {
			log.Warn("failed to mark notification delivered", slog.String("error", err.Error()))
		}
	}
	log.Info("notification delivered",
		slog.Int("attempts", attempts),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	)
	telemetry.NotifierEventsProcessed.WithLabelValues(typ, "delivered").Inc()
	return nil
}

func (n *Notifier) deadLetter(ctx context.Context, key string, raw []byte, headers []segkafka.Header, cause error) {
	carrier := kafka.HeaderCarrier(append([]segkafka.Header(nil), headers...))
	carrier.Set(HeaderFailure, cause.Error())
	if err := n.producer.Publish(ctx, kafka.TopicAssignmentEventsDLQ, key, raw, carrier...); err != nil {
		n.logger.Error("failed to publish to DLQ",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
