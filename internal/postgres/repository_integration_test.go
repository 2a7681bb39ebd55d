//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/postgres"
	"github.com/Dhairyashah5122/project-hotelrover/internal/testinfra"
)

var testPostgresDSN string

func TestMain(m *testing.M) {
	dsn, stop, err := testinfra.Postgres(context.Background())
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	testPostgresDSN = dsn
	code := m.Run()
	stop()
	os.Exit(code)
}

// newRepo connects to the test database and truncates every table on cleanup.
func newRepo(t *testing.T) (*postgres.Repository, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testPostgresDSN)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Exec(ctx, "TRUNCATE assignment_events, assignments, housekeepers, rooms, hotels CASCADE") //nolint:errcheck
		pool.Close()
	})
	return postgres.NewRepository(pool), pool
}

type refs struct {
	hotel       *domain.Hotel
	room        *domain.Room
	housekeeper *domain.Housekeeper
}

func seed(t *testing.T, repo *postgres.Repository) refs {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	h := &domain.Hotel{ID: uuid.NewString(), Name: "Harbour View", Address: "1 Quay St", TotalRooms: 40, CreatedAt: now}
	require.NoError(t, repo.CreateHotel(ctx, h))
	r := &domain.Room{ID: uuid.NewString(), HotelID: h.ID, Number: "101", Type: "double", Floor: 1, CreatedAt: now}
	require.NoError(t, repo.CreateRoom(ctx, r))
	hk := &domain.Housekeeper{ID: uuid.NewString(), HotelID: h.ID, Name: "Ana", Email: "ana@example.com", IsActive: true, CreatedAt: now}
	require.NoError(t, repo.CreateHousekeeper(ctx, hk))
	return refs{hotel: h, room: r, housekeeper: hk}
}

func newAssignment(r refs, created time.Time) *domain.Assignment {
	return &domain.Assignment{
		ID:            uuid.NewString(),
		HousekeeperID: r.housekeeper.ID,
		RoomID:        r.room.ID,
		HotelID:       r.hotel.ID,
		Task:          "full clean",
		Status:        domain.StatusDirty,
		CreatedAt:     created,
		Version:       1,
	}
}

func TestPostgres_ReferenceEntities(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	r := seed(t, repo)

	hotel, err := repo.GetHotel(ctx, r.hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbour View", hotel.Name)

	rooms, err := repo.ListRooms(ctx, r.hotel.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].Number)

	hks, err := repo.ListHousekeepers(ctx, "")
	require.NoError(t, err)
	require.Len(t, hks, 1)
	assert.Equal(t, "ana@example.com", hks[0].Email)

	for _, kind := range []domain.EntityKind{domain.KindHotel, domain.KindRoom, domain.KindHousekeeper} {
		var notFound *domain.NotFoundError
		require.ErrorAs(t, repo.FindByID(ctx, kind, uuid.NewString()), &notFound)
		require.ErrorAs(t, repo.FindByID(ctx, kind, "not-a-uuid"), &notFound)
	}
	require.NoError(t, repo.FindByID(ctx, domain.KindRoom, r.room.ID))
}

func TestPostgres_CreateRoom_MissingHotel(t *testing.T) {
	repo, _ := newRepo(t)

	err := repo.CreateRoom(context.Background(), &domain.Room{
		ID: uuid.NewString(), HotelID: uuid.NewString(), Number: "7", CreatedAt: time.Now().UTC(),
	})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestPostgres_Assignment_CreateGet(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	a := newAssignment(seed(t, repo), time.Now().UTC().Truncate(time.Microsecond))

	require.NoError(t, repo.CreateAssignment(ctx, a))

	got, err := repo.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDirty, got.Status)
	assert.Nil(t, got.StartTime)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetAssignment(ctx, uuid.NewString())
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPostgres_ConditionalUpdate(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	a := newAssignment(seed(t, repo), time.Now().UTC())
	require.NoError(t, repo.CreateAssignment(ctx, a))

	start := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusDirty, 1, domain.Patch{
		Status:    domain.StatusInProgress,
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	require.NotNil(t, updated.StartTime)
	assert.True(t, start.Equal(*updated.StartTime))

	// A writer still holding the old status loses.
	_, err = repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusDirty, 1, domain.Patch{Status: domain.StatusInProgress})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.StatusDirty, conflict.Expected)

	// Same status, stale version: reopened and restarted in between.
	_, err = repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusInProgress, 2, domain.Patch{Status: domain.StatusDirty})
	require.NoError(t, err)
	restart := start.Add(time.Hour)
	_, err = repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusDirty, 3, domain.Patch{
		Status: domain.StatusInProgress, StartTime: &restart,
	})
	require.NoError(t, err)
	_, err = repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusInProgress, 2, domain.Patch{
		Status: domain.StatusClean, StartTime: &start, EndTime: &restart, TotalMinutes: 60,
	})
	require.ErrorAs(t, err, &conflict)
	got, err := repo.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.True(t, restart.Equal(*got.StartTime))
	assert.Equal(t, int64(4), got.Version)

	_, err = repo.ConditionalUpdateAssignment(ctx, uuid.NewString(), domain.StatusDirty, 1, domain.Patch{Status: domain.StatusInProgress})
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPostgres_ConditionalUpdate_OneWinner(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	a := newAssignment(seed(t, repo), time.Now().UTC())
	require.NoError(t, repo.CreateAssignment(ctx, a))

	const writers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		losses  int
		unknown []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusDirty, 1, domain.Patch{Status: domain.StatusInProgress})
			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.ConflictError
			switch {
			case err == nil:
				wins++
			case errors.As(err, &conflict):
				losses++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, losses)
	assert.Empty(t, unknown)
}

func TestPostgres_QueryAssignments(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	r := seed(t, repo)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mk := func(status domain.Status, start *time.Time, minutes int) *domain.Assignment {
		a := newAssignment(r, time.Now().UTC())
		require.NoError(t, repo.CreateAssignment(ctx, a))
		if status != domain.StatusDirty {
			_, err := repo.ConditionalUpdateAssignment(ctx, a.ID, domain.StatusDirty, 1, domain.Patch{
				Status: status, StartTime: start, TotalMinutes: minutes,
			})
			require.NoError(t, err)
		}
		return a
	}
	at := func(h int) *time.Time { v := day.Add(time.Duration(h) * time.Hour); return &v }

	clean := mk(domain.StatusClean, at(9), 30)
	inspected := mk(domain.StatusInspected, at(23), 45)
	mk(domain.StatusInProgress, at(10), 0)
	mk(domain.StatusClean, at(30), 20) // next day
	mk(domain.StatusDirty, nil, 0)

	from, to := domain.DayBounds(day)
	got, err := repo.QueryAssignments(ctx, domain.AssignmentFilter{
		HousekeeperID: r.housekeeper.ID,
		Statuses:      []domain.Status{domain.StatusClean, domain.StatusInspected},
		StartFrom:     &from,
		StartTo:       &to,
	})
	require.NoError(t, err)
	ids := []string{}
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{clean.ID, inspected.ID}, ids)

	// Both bounds are inclusive.
	exact := *at(9)
	got, err = repo.QueryAssignments(ctx, domain.AssignmentFilter{StartFrom: &exact, StartTo: &exact})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, clean.ID, got[0].ID)

	all, err := repo.QueryAssignments(ctx, domain.AssignmentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := repo.QueryAssignments(ctx, domain.AssignmentFilter{HousekeeperID: "bogus"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostgres_RecordEvent_Idempotent(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	r := seed(t, repo)
	a := newAssignment(r, time.Now().UTC())
	require.NoError(t, repo.CreateAssignment(ctx, a))

	base := time.Now().UTC().Truncate(time.Microsecond)
	created := &domain.Event{
		ID: uuid.NewString(), Type: domain.EventCreated, AssignmentID: a.ID,
		HousekeeperID: a.HousekeeperID, HotelID: a.HotelID, RoomID: a.RoomID,
		Status: domain.StatusDirty, OccurredAt: base,
	}
	started := *created
	started.ID = uuid.NewString()
	started.Type = domain.EventStarted
	started.Status = domain.StatusInProgress
	started.OccurredAt = base.Add(time.Minute)

	require.NoError(t, repo.RecordEvent(ctx, &started))
	require.NoError(t, repo.RecordEvent(ctx, created))
	require.NoError(t, repo.RecordEvent(ctx, created), "redelivery must be a no-op")

	events, err := repo.ListEvents(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventCreated, events[0].Type)
	assert.Equal(t, domain.EventStarted, events[1].Type)
}

func TestPostgres_Unavailable(t *testing.T) {
	repo, pool := newRepo(t)
	require.NoError(t, repo.Ping(context.Background()))
	pool.Close()

	_, err := repo.GetAssignment(context.Background(), uuid.NewString())
	var unavailable *domain.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
