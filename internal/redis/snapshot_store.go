package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

const (
	latestReportKey = "report:daily:latest"
	snapshotTTL     = 8 * 24 * time.Hour
)

func dailyReportKey(date string) string { return "report:daily:" + date }

// ErrNoSnapshot is returned when no daily report has been stored yet.
var ErrNoSnapshot = errors.New("no daily report snapshot")

// SnapshotStore keeps the daily report snapshots written by the scheduler.
type SnapshotStore interface {
	SaveDaily(ctx context.Context, r *domain.DailyReport) error
	Latest(ctx context.Context) (*domain.DailyReport, error)
	ForDate(ctx context.Context, date string) (*domain.DailyReport, error)
}

type snapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a Redis-backed SnapshotStore.
func NewSnapshotStore(client *redis.Client) SnapshotStore {
	return &snapshotStore{client: client}
}

// SaveDaily stores r under its date and as the latest snapshot in one transaction.
func (s *snapshotStore) SaveDaily(ctx context.Context, r *domain.DailyReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal daily report: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dailyReportKey(r.Date), data, snapshotTTL)
	pipe.Set(ctx, latestReportKey, data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save daily report %s: %w", r.Date, err)
	}
	return nil
}

func (s *snapshotStore) Latest(ctx context.Context) (*domain.DailyReport, error) {
	return s.get(ctx, latestReportKey)
}

func (s *snapshotStore) ForDate(ctx context.Context, date string) (*domain.DailyReport, error) {
	return s.get(ctx, dailyReportKey(date))
}

func (s *snapshotStore) get(ctx context.Context, key string) (*domain.DailyReport, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var r domain.DailyReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal daily report: %w", err)
	}
	return &r, nil
}
