package assignment_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhairyashah5122/project-hotelrover/internal/assignment"
	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
	"github.com/Dhairyashah5122/project-hotelrover/internal/memstore"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// stalledPublisher blocks until its context ends, like a broker that
// accepts the connection and never acks.
type stalledPublisher struct {
	err chan error
}

func (p *stalledPublisher) Publish(ctx context.Context, _ *domain.Event) error {
	<-ctx.Done()
	p.err <- ctx.Err()
	return ctx.Err()
}

// gatedStore holds the first two reads until both have happened, forcing two
// concurrent transitions to observe the same prior status.
type gatedStore struct {
	*memstore.Store
	reads atomic.Int32
	both  chan struct{}
}

func (g *gatedStore) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := g.Store.GetAssignment(ctx, id)
	if n := g.reads.Add(1); n <= 2 {
		if n == 2 {
			close(g.both)
		}
		<-g.both
	}
	return a, err
}

// interleavingStore runs between once, right after the first read returns,
// so another writer can change the record under an in-flight transition.
type interleavingStore struct {
	*memstore.Store
	once    sync.Once
	between func()
}

func (s *interleavingStore) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	s.once.Do(s.between)
	return a, err
}

// unavailableStore fails every call with a connectivity error.
type unavailableStore struct{ *memstore.Store }

func (u unavailableStore) GetAssignment(context.Context, string) (*domain.Assignment, error) {
	return nil, &domain.UnavailableError{Op: "get assignment", Err: errors.New("connection refused")}
}

// ── helpers ──────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memstore.Store
	clock *fakeClock
	pub   *fakePublisher
	svc   *assignment.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.CreateHotel(ctx, &domain.Hotel{ID: "Ho", Name: "Harbour"}))
	require.NoError(t, store.CreateRoom(ctx, &domain.Room{ID: "R", HotelID: "Ho", Number: "101"}))
	require.NoError(t, store.CreateHousekeeper(ctx, &domain.Housekeeper{ID: "H", HotelID: "Ho", Name: "Mira"}))
	require.NoError(t, store.CreateHousekeeper(ctx, &domain.Housekeeper{ID: "H2", HotelID: "Ho", Name: "Tom"}))

	f := &fixture{store: store, clock: &fakeClock{now: t0}, pub: &fakePublisher{}}
	f.svc = f.newService(store)
	return f
}

func (f *fixture) newService(store assignment.Store) *assignment.Service {
	return assignment.NewService(store,
		assignment.WithClock(f.clock.Now),
		assignment.WithPublisher(f.pub),
		assignment.WithLogger(slog.Default()),
	)
}

func (f *fixture) create(t *testing.T, hk string) *domain.Assignment {
	t.Helper()
	a, err := f.svc.CreateAssignment(context.Background(), assignment.CreateInput{
		HousekeeperID: hk, RoomID: "R", HotelID: "Ho", Task: "Room Cleaning",
	})
	require.NoError(t, err)
	return a
}

// clean runs start → finish with the given elapsed time.
func (f *fixture) clean(t *testing.T, hk string, elapsed time.Duration) *domain.Assignment {
	t.Helper()
	ctx := context.Background()
	a := f.create(t, hk)
	_, err := f.svc.StartCleaning(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(elapsed)
	done, err := f.svc.FinishCleaning(ctx, a.ID)
	require.NoError(t, err)
	return done
}

// ── create ───────────────────────────────────────────────────────────────────

func TestCreateAssignment_StartsDirtyWithoutTimestamps(t *testing.T) {
	f := newFixture(t)

	a := f.create(t, "H")

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, domain.StatusDirty, a.Status)
	assert.Nil(t, a.StartTime)
	assert.Nil(t, a.EndTime)
	assert.Zero(t, a.TotalMinutes)
	assert.True(t, a.CreatedAt.Equal(t0))
	assert.Equal(t, []domain.EventType{domain.EventCreated}, f.pub.types())

	stored, err := f.store.QueryAssignments(context.Background(), domain.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1, "exactly one record persisted")
}

func TestCreateAssignment_MissingReferences(t *testing.T) {
	tests := []struct {
		name string
		in   assignment.CreateInput
		kind domain.EntityKind
	}{
		{"housekeeper", assignment.CreateInput{HousekeeperID: "nope", RoomID: "R", HotelID: "Ho", Task: "x"}, domain.KindHousekeeper},
		{"room", assignment.CreateInput{HousekeeperID: "H", RoomID: "nope", HotelID: "Ho", Task: "x"}, domain.KindRoom},
		{"hotel", assignment.CreateInput{HousekeeperID: "H", RoomID: "R", HotelID: "nope", Task: "x"}, domain.KindHotel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.CreateAssignment(context.Background(), tt.in)

			var nf *domain.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.kind, nf.Kind)
			assert.Equal(t, "nope", nf.ID)
			stored, _ := f.store.QueryAssignments(context.Background(), domain.AssignmentFilter{})
			assert.Empty(t, stored)
		})
	}
}

func TestCreateAssignment_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAssignment(context.Background(), assignment.CreateInput{
		HousekeeperID: "H", RoomID: "R", HotelID: "Ho", Task: "   ",
	})

	var inv *domain.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "task", inv.Field)
	assert.Empty(t, f.pub.types())
}

// ── transitions ──────────────────────────────────────────────────────────────

func TestScenario_CreateStartFinishReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, "H")

	started, err := f.svc.StartCleaning(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
	require.NotNil(t, started.StartTime)

	f.clock.Advance(30 * time.Minute)
	done, err := f.svc.FinishCleaning(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClean, done.Status)
	assert.Equal(t, 30, done.TotalMinutes)

	report, err := f.svc.GetReport(ctx, assignment.ReportFilter{HousekeeperID: "H"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.ReportSummary{
		"H": {HousekeeperID: "H", TotalRooms: 1, TotalTime: 30, AverageTime: 30},
	}, report)

	assert.Equal(t, []domain.EventType{
		domain.EventCreated, domain.EventStarted, domain.EventFinished,
	}, f.pub.types())
}

func TestFinish_RoundsHalfUp(t *testing.T) {
	f := newFixture(t)

	done := f.clean(t, "H", 47*time.Minute+30*time.Second)

	assert.Equal(t, 48, done.TotalMinutes)
	assert.True(t, done.EndTime.Sub(*done.StartTime) == 47*time.Minute+30*time.Second)
}

func TestFinish_NotInProgress_LeavesRecordUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "H")

	_, err := f.svc.FinishCleaning(ctx, a.ID)

	var inv *domain.InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.StatusDirty, inv.From)

	got, err := f.svc.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestFinish_Twice_IsRejected(t *testing.T) {
	f := newFixture(t)
	done := f.clean(t, "H", 10*time.Minute)
	f.clock.Advance(time.Hour)

	_, err := f.svc.FinishCleaning(context.Background(), done.ID)

	var inv *domain.InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	got, _ := f.svc.GetAssignment(context.Background(), done.ID)
	assert.Equal(t, 10, got.TotalMinutes, "second finish must not recount")
}

func TestStart_UnknownAssignment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartCleaning(context.Background(), "missing")

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.KindAssignment, nf.Kind)
}

func TestInspect_ThenTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.clean(t, "H", 25*time.Minute)

	inspected, err := f.svc.InspectAssignment(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInspected, inspected.Status)
	assert.Equal(t, 25, inspected.TotalMinutes)

	for _, tr := range []domain.Transition{domain.TransitionStart, domain.TransitionFinish, domain.TransitionInspect} {
		_, err := f.svc.Transition(ctx, done.ID, tr)
		var inv *domain.InvalidTransitionError
		assert.ErrorAs(t, err, &inv, "inspected must reject %s", tr)
	}
}

func TestReopen_FullResetThenRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.clean(t, "H", 15*time.Minute)

	reopened, err := f.svc.ReopenAssignment(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDirty, reopened.Status)
	assert.Nil(t, reopened.StartTime)
	assert.Nil(t, reopened.EndTime)
	assert.Zero(t, reopened.TotalMinutes)
	assert.Equal(t, done.HousekeeperID, reopened.HousekeeperID)
	assert.True(t, done.CreatedAt.Equal(reopened.CreatedAt))

	f.clock.Advance(time.Hour)
	restarted, err := f.svc.StartCleaning(ctx, done.ID)
	require.NoError(t, err)
	assert.True(t, restarted.StartTime.Equal(f.clock.Now()), "restart records a fresh startTime")

	report, err := f.svc.GetReport(ctx, assignment.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, report, "reopened work no longer counts")
}

func TestTransition_ConcurrentFinish_OneWinsOtherConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "H")
	_, err := f.svc.StartCleaning(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)

	svc := f.newService(&gatedStore{Store: f.store, both: make(chan struct{})})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.FinishCleaning(ctx, a.ID)
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		var c *domain.ConflictError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &c):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	got, err := f.svc.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClean, got.Status)
	assert.Equal(t, 20, got.TotalMinutes)
}

func TestTransition_FinishAfterReopenAndRestart_UsesRestartedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "H")
	_, err := f.svc.StartCleaning(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	restartedAt := f.clock.Now()

	store := &interleavingStore{Store: f.store, between: func() {
		_, err := f.svc.ReopenAssignment(ctx, a.ID)
		require.NoError(t, err)
		_, err = f.svc.StartCleaning(ctx, a.ID)
		require.NoError(t, err)
		f.clock.Advance(25 * time.Minute)
	}}
	done, err := f.newService(store).FinishCleaning(ctx, a.ID)
	require.NoError(t, err)

	require.NotNil(t, done.StartTime)
	assert.True(t, done.StartTime.Equal(restartedAt), "stale startTime %v written back", done.StartTime)
	assert.Equal(t, 25, done.TotalMinutes)
	assert.Equal(t, int64(5), done.Version)

	report, err := f.svc.GetReport(ctx, assignment.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 25, report["H"].TotalTime)
}

func TestTransition_CancelledContext_NoWrite(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "H")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.StartCleaning(ctx, a.ID)
	require.ErrorIs(t, err, context.Canceled)

	got, err := f.svc.GetAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDirty, got.Status)
}

func TestTransition_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	svc := f.newService(unavailableStore{f.store})

	_, err := svc.StartCleaning(context.Background(), "any")

	var un *domain.UnavailableError
	require.ErrorAs(t, err, &un)
}

func TestPublisherFailure_DoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "H")
	f.pub.err = errors.New("broker down")

	started, err := f.svc.StartCleaning(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
}

func TestPublish_StalledBrokerBoundedByTimeout(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "H")

	pub := &stalledPublisher{err: make(chan error, 1)}
	svc := assignment.NewService(f.store,
		assignment.WithClock(f.clock.Now),
		assignment.WithPublisher(pub),
		assignment.WithPublishTimeout(20*time.Millisecond),
	)

	begin := time.Now()
	started, err := svc.StartCleaning(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
	assert.Less(t, time.Since(begin), time.Second, "request must not wait on the broker past the publish timeout")
	assert.ErrorIs(t, <-pub.err, context.DeadlineExceeded)

	stored, err := f.store.GetAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status, "write stays committed")
}

// ── reporting ────────────────────────────────────────────────────────────────

func TestReport_TwoAssignmentsSameHousekeeper(t *testing.T) {
	f := newFixture(t)
	f.clean(t, "H", 20*time.Minute)
	f.clean(t, "H", 40*time.Minute)

	report, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportSummary{HousekeeperID: "H", TotalRooms: 2, TotalTime: 60, AverageTime: 30}, report["H"])
}

func TestReport_IdempotentWithoutWrites(t *testing.T) {
	f := newFixture(t)
	f.clean(t, "H", 12*time.Minute)
	f.clean(t, "H2", 33*time.Minute)

	first, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{})
	require.NoError(t, err)
	second, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReport_OmitsHousekeepersWithoutCompletedWork(t *testing.T) {
	f := newFixture(t)
	f.clean(t, "H", 12*time.Minute)
	a := f.create(t, "H2")
	_, err := f.svc.StartCleaning(context.Background(), a.ID)
	require.NoError(t, err)

	report, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{})
	require.NoError(t, err)
	assert.Contains(t, report, "H")
	assert.NotContains(t, report, "H2")

	report, err = f.svc.GetReport(context.Background(), assignment.ReportFilter{HousekeeperID: "H2"})
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestReport_DateRangeOnStartTime(t *testing.T) {
	f := newFixture(t)
	f.clean(t, "H", 10*time.Minute) // starts at t0
	f.clock.Advance(24 * time.Hour)
	f.clean(t, "H", 50*time.Minute) // starts a day later

	from := t0.Add(12 * time.Hour)
	report, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{StartDate: &from})
	require.NoError(t, err)
	assert.Equal(t, 1, report["H"].TotalRooms)
	assert.Equal(t, 50, report["H"].TotalTime)

	to := t0
	report, err = f.svc.GetReport(context.Background(), assignment.ReportFilter{EndDate: &to})
	require.NoError(t, err)
	assert.Equal(t, 10, report["H"].TotalTime, "end bound is inclusive")
}

func TestReport_EndBeforeStart(t *testing.T) {
	f := newFixture(t)
	from := t0
	to := t0.Add(-time.Hour)

	_, err := f.svc.GetReport(context.Background(), assignment.ReportFilter{StartDate: &from, EndDate: &to})

	var tr *domain.InvalidTimeRangeError
	assert.ErrorAs(t, err, &tr)
}

func TestListAssignments_ByStatus(t *testing.T) {
	f := newFixture(t)
	f.clean(t, "H", 5*time.Minute)
	f.create(t, "H")

	dirty, err := f.svc.ListAssignments(context.Background(), domain.AssignmentFilter{
		Statuses: []domain.Status{domain.StatusDirty},
	})
	require.NoError(t, err)
	assert.Len(t, dirty, 1)
}
