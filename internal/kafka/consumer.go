package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/Dhairyashah5122/project-hotelrover/pkg/retry"
)

// Message is the part of a Kafka message the services read.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   []kafka.Header
}

// Header returns the value of the header named key, or "".
func (m Message) Header(key string) string {
	return HeaderCarrier(m.Headers).Get(key)
}

// HandlerFunc processes one message. A nil return commits the offset.
type HandlerFunc func(ctx context.Context, msg Message) error

// Consumer reads messages from a Kafka topic.
type Consumer interface {
	Subscribe(ctx context.Context, handler HandlerFunc) error
	Close() error
}

// reader is the subset of *kafka.Reader the consumer drives.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Backoff between redeliveries of a failing message.
const (
	handlerBaseDelay = 200 * time.Millisecond
	handlerMaxDelay  = 10 * time.Second
)

type consumer struct {
	reader    reader
	logger    *slog.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewConsumer creates a consumer for topic in consumer group groupID.
func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0, // commit explicitly after each handled message
		StartOffset:    kafka.FirstOffset,
	})
	return newConsumer(r, logger.With(slog.String("topic", topic)))
}

func newConsumer(r reader, logger *slog.Logger) *consumer {
	return &consumer{
		reader:    r,
		logger:    logger,
		baseDelay: handlerBaseDelay,
		maxDelay:  handlerMaxDelay,
	}
}

// Subscribe reads messages until ctx is cancelled. A failing message is handed
// to the handler again with capped backoff until it succeeds, so no later
// offset is committed past it. Offsets are committed only after the handler
// succeeds; if ctx is cancelled mid-retry the offset stays uncommitted and the
// message is redelivered to the next group member.
func (c *consumer) Subscribe(ctx context.Context, handler HandlerFunc) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		carrier := HeaderCarrier(m.Headers)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)

		msg := Message{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       m.Key,
			Value:     m.Value,
			Headers:   m.Headers,
		}
		err = retry.Do(ctx, retry.Config{
			MaxAttempts: retry.Forever,
			BaseDelay:   c.baseDelay,
			MaxDelay:    c.maxDelay,
			OnRetry: func(attempt int, err error) {
				c.logger.Error("message handler failed, retrying",
					slog.Int("partition", m.Partition),
					slog.Int64("offset", m.Offset),
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()),
				)
			},
		}, func(int) error {
			return handler(msgCtx, msg)
		})
		if err != nil {
			// Only cancellation ends an unbounded retry.
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit kafka offset",
				slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *consumer) Close() error {
	return c.reader.Close()
}
