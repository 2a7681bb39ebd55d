//go:build integration

package redis_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	redisstore "github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/internal/testinfra"
)

var testRedisAddr string

func TestMain(m *testing.M) {
	addr, stop, err := testinfra.Redis(context.Background())
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	testRedisAddr = addr
	code := m.Run()
	stop()
	os.Exit(code)
}

// newRedisClient returns a client connected to the test container and flushes
// the database on cleanup so tests don't interfere with each other.
func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redisstore.NewClient(testRedisAddr)
	t.Cleanup(func() {
		client.FlushDB(context.Background()) //nolint:errcheck
		client.Close()                       //nolint:errcheck
	})
	return client
}

// ── Rate limiter ─────────────────────────────────────────────────────────────

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	limiter := redisstore.NewRateLimiter(newRedisClient(t), 3, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "client:10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "client:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "4th request should be rate-limited")

	ok, err = limiter.Allow(ctx, "client:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own window")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	window := 200 * time.Millisecond
	limiter := redisstore.NewRateLimiter(newRedisClient(t), 2, window)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "expiry-key")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "expiry-key")
	require.NoError(t, err)
	assert.False(t, ok, "should be blocked within window")

	time.Sleep(window + 50*time.Millisecond)

	ok, err = limiter.Allow(ctx, "expiry-key")
	require.NoError(t, err)
	assert.True(t, ok, "should be allowed after window expires")
}

// ── Snapshots ────────────────────────────────────────────────────────────────

func TestSnapshotStore_LatestAndForDate(t *testing.T) {
	client := newRedisClient(t)
	store := redisstore.NewSnapshotStore(client)
	ctx := context.Background()

	_, err := store.Latest(ctx)
	require.ErrorIs(t, err, redisstore.ErrNoSnapshot)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	from, to := domain.DayBounds(day)
	rep := &domain.DailyReport{
		Date: "2024-03-10", From: from, To: to, GeneratedAt: to.Add(5 * time.Minute),
		Summaries: map[string]domain.ReportSummary{
			"hk-1": {HousekeeperID: "hk-1", TotalRooms: 3, TotalTime: 90, AverageTime: 30},
		},
	}
	require.NoError(t, store.SaveDaily(ctx, rep))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, rep.Summaries, latest.Summaries)

	byDate, err := store.ForDate(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.True(t, rep.From.Equal(byDate.From))

	ttl, err := client.TTL(ctx, "report:daily:2024-03-10").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "dated snapshots expire")
}

// ── Lease ────────────────────────────────────────────────────────────────────

func TestLease_SingleLeader(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	a := redisstore.NewLease(client, "scheduler:leader", "scheduler-a", time.Second)
	b := redisstore.NewLease(client, "scheduler:leader", "scheduler-b", time.Second)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "b must not lead while a holds the lease")

	ok, err = a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "the holder can renew")

	require.NoError(t, b.Release(ctx), "releasing a lease you do not hold is a no-op")
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

// ── Delivery ledger ──────────────────────────────────────────────────────────

func TestDeliveryLedger(t *testing.T) {
	ledger := redisstore.NewDeliveryLedger(newRedisClient(t))
	ctx := context.Background()

	done, err := ledger.Delivered(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, ledger.MarkDelivered(ctx, "evt-1"))

	done, err = ledger.Delivered(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, done)
}
