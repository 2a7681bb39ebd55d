package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/kafka"
)

type published struct {
	topic, key string
	value      []byte
	headers    []segkafka.Header
}

type fakeProducer struct {
	msgs []published
	err  error
}

func (f *fakeProducer) Publish(_ context.Context, topic, key string, value []byte, headers ...segkafka.Header) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, key, value, headers})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestEventPublisher_RoundTrip(t *testing.T) {
	p := &fakeProducer{}
	ev := &domain.Event{
		ID: "e-1", Type: domain.EventFinished, AssignmentID: "a-1",
		HousekeeperID: "hk-1", Status: domain.StatusClean, TotalMinutes: 48,
		OccurredAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, kafka.NewEventPublisher(p).Publish(context.Background(), ev))
	require.Len(t, p.msgs, 1)
	m := p.msgs[0]
	assert.Equal(t, kafka.TopicAssignmentEvents, m.topic)
	assert.Equal(t, "a-1", m.key, "keyed by assignment for per-assignment ordering")

	msg := kafka.Message{Topic: m.topic, Value: m.value, Headers: m.headers}
	assert.Equal(t, string(domain.EventFinished), msg.Header(kafka.HeaderEventType))
	assert.Equal(t, "e-1", msg.Header(kafka.HeaderEventID))

	got, err := kafka.DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, ev.TotalMinutes, got.TotalMinutes)
	assert.Equal(t, domain.StatusClean, got.Status)
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
}

func TestEventPublisher_ProducerError(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	err := kafka.NewEventPublisher(p).Publish(context.Background(), &domain.Event{ID: "e", Type: domain.EventCreated})
	assert.ErrorContains(t, err, "broker down")
}

func TestDecodeEvent_Rejects(t *testing.T) {
	_, err := kafka.DecodeEvent(kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)

	_, err = kafka.DecodeEvent(kafka.Message{Value: []byte(`{"assignmentId":"a"}`)})
	assert.ErrorContains(t, err, "missing id or type")
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	var c kafka.HeaderCarrier
	c.Set("traceparent", "one")
	c.Set("baggage", "x")
	c.Set("traceparent", "two")

	assert.Equal(t, "two", c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
	assert.Equal(t, "", c.Get("missing"))
}
