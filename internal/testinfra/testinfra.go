//go:build integration

// Package testinfra starts the containers used by integration tests.
//
// Run with: go test -tags=integration ./...
package testinfra

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go"
	tcKafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Dhairyashah5122/project-hotelrover/internal/postgres/migrations"
)

// Terminate stops a container started by this package.
type Terminate func()

// Postgres starts PostgreSQL, applies every migration and returns its DSN.
func Postgres(ctx context.Context) (string, Terminate, error) {
	ctr, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("hotelrover"),
		tcPostgres.WithUsername("hotelrover"),
		tcPostgres.WithPassword("hotelrover"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	stop := func() { _ = ctr.Terminate(context.Background()) }

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("postgres connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()
	if _, err := migrations.Up(pool); err != nil {
		stop()
		return "", nil, err
	}
	return dsn, stop, nil
}

// Redis starts Redis and returns its host:port.
func Redis(ctx context.Context) (string, Terminate, error) {
	ctr, err := tcRedis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return "", nil, fmt.Errorf("start redis container: %w", err)
	}
	stop := func() { _ = ctr.Terminate(context.Background()) }

	conn, err := ctr.ConnectionString(ctx)
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("redis connection string: %w", err)
	}
	// go-redis wants host:port, not a redis:// URL.
	return strings.TrimPrefix(conn, "redis://"), stop, nil
}

// Kafka starts a single-node broker and returns its bootstrap addresses.
func Kafka(ctx context.Context) ([]string, Terminate, error) {
	ctr, err := tcKafka.Run(ctx, "confluentinc/confluent-local:7.7.1",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Kafka Server started").
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("start kafka container: %w", err)
	}
	stop := func() { _ = ctr.Terminate(context.Background()) }

	brokers, err := ctr.Brokers(ctx)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("kafka brokers: %w", err)
	}
	return brokers, stop, nil
}

// CreateTopic creates topic up front. Auto-creation on first publish races
// the producer and can fail with UNKNOWN_TOPIC_OR_PARTITION.
func CreateTopic(t *testing.T, brokers []string, topic string) {
	t.Helper()
	conn, err := kafkago.DialContext(context.Background(), "tcp", brokers[0])
	if err != nil {
		t.Fatalf("kafka dial for topic creation: %v", err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Fatalf("create topic %q: %v", topic, err)
	}
}

// UniqueName suffixes base so tests sharing a broker do not collide.
func UniqueName(base string) string {
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano())
}
