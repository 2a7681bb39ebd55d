package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// EventPublisher writes assignment lifecycle events to TopicAssignmentEvents.
type EventPublisher struct {
	producer Producer
	topic    string
}

// NewEventPublisher publishes through p to TopicAssignmentEvents.
func NewEventPublisher(p Producer) *EventPublisher {
	return &EventPublisher{producer: p, topic: TopicAssignmentEvents}
}

// Publish encodes ev as JSON keyed by its assignment ID.
func (p *EventPublisher) Publish(ctx context.Context, ev *domain.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}
	return p.producer.Publish(ctx, p.topic, ev.AssignmentID, value, EventHeaders(ev)...)
}

// EventHeaders returns the headers identifying ev without decoding the body.
func EventHeaders(ev *domain.Event) []kafka.Header {
	return []kafka.Header{
		{Key: HeaderEventType, Value: []byte(ev.Type)},
		{Key: HeaderEventID, Value: []byte(ev.ID)},
	}
}

// DecodeEvent parses a lifecycle event message.
func DecodeEvent(msg Message) (*domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return nil, fmt.Errorf("decode event at %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, fmt.Errorf("decode event at %s/%d@%d: missing id or type", msg.Topic, msg.Partition, msg.Offset)
	}
	return &ev, nil
}
