package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deliveryTTL = 7 * 24 * time.Hour

func deliveryKey(eventID string) string { return "notify:delivered:" + eventID }

// DeliveryLedger remembers which events already produced a notification, so a
// redelivered Kafka message does not send the same email twice.
type DeliveryLedger interface {
	Delivered(ctx context.Context, eventID string) (bool, error)
	MarkDelivered(ctx context.Context, eventID string) error
}

type deliveryLedger struct {
	client *redis.Client
}

// NewDeliveryLedger creates a Redis-backed DeliveryLedger.
func NewDeliveryLedger(client *redis.Client) DeliveryLedger {
	return &deliveryLedger{client: client}
}

func (l *deliveryLedger) Delivered(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, deliveryKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check delivery %s: %w", eventID, err)
	}
	return n == 1, nil
}

func (l *deliveryLedger) MarkDelivered(ctx context.Context, eventID string) error {
	if err := l.client.Set(ctx, deliveryKey(eventID), time.Now().UTC().Format(time.RFC3339), deliveryTTL).Err(); err != nil {
		return fmt.Errorf("redis mark delivery %s: %w", eventID, err)
	}
	return nil
}
