package locks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ms-booking/internal/db"
	"ms-booking/internal/db/dbtest"
	"ms-booking/internal/events/eventstest"
	"ms-booking/internal/locks"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)}
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

type fixture struct {
	repo      *db.DB
	clock     *fakeClock
	publisher *eventstest.MockPublisher
	manager   *locks.Manager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	repo := dbtest.New(t)
	clock := newFakeClock()
	pub := &eventstest.MockPublisher{}
	pub.On("PublishSeatStatus", mock.Anything, mock.Anything).Return(nil)

	m := locks.NewManager(repo, nil, pub, logger.NewNop(), locks.WithClock(clock.Now))
	createShow(t, repo, "show-1")
	return &fixture{repo: repo, clock: clock, publisher: pub, manager: m}
}

func createShow(t *testing.T, repo *db.DB, showID string) {
	t.Helper()
	require.NoError(t, repo.CreateShow(context.Background(), &models.Show{
		ID:        showID,
		MovieID:   "movie-1",
		Theatre:   "Grand Cinema",
		Date:      "2025-10-20",
		Time:      "18:30",
		Price:     10,
		CreatedAt: time.Now().UTC(),
		Seats:     seats.Generate(showID, seats.DefaultRows, seats.DefaultSeatsPerRow, 10),
	}))
}

func seatState(t *testing.T, f *fixture, seatID string) models.SeatState {
	t.Helper()
	seat, err := f.repo.FindSeat(context.Background(), "show-1", seatID)
	require.NoError(t, err)
	return seat.State
}

func TestLockSeatsLocksAvailable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"A1", "A2"}, 0)
	require.NoError(t, err)

	assert.Regexp(t, `^lock_\d+_[0-9a-f]{32}$`, res.LockToken)
	assert.Equal(t, []string{"A1", "A2"}, res.LockedSeats)
	assert.Empty(t, res.FailedSeats)
	assert.Equal(t, f.clock.Now().Add(locks.DefaultHold), res.ExpiresAt)
	assert.Equal(t, models.SeatLocked, seatState(t, f, "A1"))
	assert.Equal(t, models.SeatLocked, seatState(t, f, "A2"))

	events := f.publisher.SeatEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.SeatLocked, events[0].Status)
	assert.Equal(t, []string{"A1", "A2"}, events[0].SeatIDs)
}

func TestLockSeatsPartialConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.manager.LockSeats(ctx, "show-1", []string{"A1", "A2"}, 0)
	require.NoError(t, err)

	second, err := f.manager.LockSeats(ctx, "show-1", []string{"A2", "A3", "Z99"}, 0)
	require.NoError(t, err)

	assert.NotEqual(t, first.LockToken, second.LockToken)
	assert.Equal(t, []string{"A3"}, second.LockedSeats)
	assert.Equal(t, []string{"A2", "Z99"}, second.FailedSeats)
}

func TestLockSeatsPartitionsEveryRequestedSeat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", []string{"B1", "B3"}, 0)
	require.NoError(t, err)

	requested := []string{"B1", "B2", "B3", "B4", "B2", "", "Q1"}
	res, err := f.manager.LockSeats(ctx, "show-1", requested, 0)
	require.NoError(t, err)

	all := append(append([]string{}, res.LockedSeats...), res.FailedSeats...)
	assert.ElementsMatch(t, []string{"B1", "B2", "B3", "B4", "Q1"}, all)
	for _, id := range res.LockedSeats {
		assert.NotContains(t, res.FailedSeats, id)
	}
}

func TestLockSeatsRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", nil, 0)
	assert.ErrorIs(t, err, models.ErrNoSeatsRequested)

	_, err = f.manager.LockSeats(ctx, "show-1", []string{"", " "}, 0)
	assert.ErrorIs(t, err, models.ErrNoSeatsRequested)

	_, err = f.manager.LockSeats(ctx, "no-such-show", []string{"A1"}, 0)
	assert.ErrorIs(t, err, models.ErrShowNotFound)
}

func TestZeroSeatLockTokenResolvesToNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", []string{"C1"}, 0)
	require.NoError(t, err)

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"C1"}, 0)
	require.NoError(t, err)
	assert.Empty(t, res.LockedSeats)
	assert.Equal(t, []string{"C1"}, res.FailedSeats)
	assert.NotEmpty(t, res.LockToken)

	held, err := f.repo.SeatsByLockToken(ctx, res.LockToken)
	require.NoError(t, err)
	assert.Empty(t, held)
	require.NoError(t, f.manager.ReleaseLock(ctx, res.LockToken))
}

func TestHoldIsCapped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"D1"}, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(locks.MaxHold), res.ExpiresAt)

	res, err = f.manager.LockSeats(ctx, "show-1", []string{"D2"}, 45*time.Second)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(45*time.Second), res.ExpiresAt)
}

func TestExpiredLockIsReclaimedOnRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"E1", "E2"}, time.Minute)
	require.NoError(t, err)

	f.clock.Advance(59 * time.Second)
	show, err := f.manager.GetShow(ctx, "show-1")
	require.NoError(t, err)
	e1, ok := seats.Find(show.Seats, "E1")
	require.True(t, ok)
	assert.Equal(t, models.SeatLocked, e1.State)

	f.clock.Advance(time.Second)
	show, err = f.manager.GetShow(ctx, "show-1")
	require.NoError(t, err)
	e1, _ = seats.Find(show.Seats, "E1")
	assert.Equal(t, models.SeatAvailable, e1.State)

	held, err := f.repo.SeatsByLockToken(ctx, res.LockToken)
	require.NoError(t, err)
	assert.Empty(t, held)

	events := f.publisher.SeatEvents()
	require.Len(t, events, 2)
	assert.Equal(t, models.SeatAvailable, events[1].Status)
	assert.ElementsMatch(t, []string{"E1", "E2"}, events[1].SeatIDs)
}

func TestExpiredSeatCanBeLockedAgain(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", []string{"F1"}, time.Minute)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Minute)

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"F1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, res.LockedSeats)
}

func TestReleaseLockIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.manager.LockSeats(ctx, "show-1", []string{"G1", "G2"}, 0)
	require.NoError(t, err)

	require.NoError(t, f.manager.ReleaseLock(ctx, res.LockToken))
	assert.Equal(t, models.SeatAvailable, seatState(t, f, "G1"))
	assert.Equal(t, models.SeatAvailable, seatState(t, f, "G2"))

	require.NoError(t, f.manager.ReleaseLock(ctx, res.LockToken))
	require.NoError(t, f.manager.ReleaseLock(ctx, "lock_0_unknown"))
	require.NoError(t, f.manager.ReleaseLock(ctx, ""))

	// one locked event, one released event
	assert.Len(t, f.publisher.SeatEvents(), 2)
}

func TestReclaimAll(t *testing.T) {
	f := setup(t)
	createShow(t, f.repo, "show-2")
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", []string{"H1"}, time.Minute)
	require.NoError(t, err)
	_, err = f.manager.LockSeats(ctx, "show-2", []string{"H1", "H2"}, time.Minute)
	require.NoError(t, err)
	_, err = f.manager.LockSeats(ctx, "show-2", []string{"H3"}, time.Hour)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	n, err := f.manager.ReclaimAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	seat, err := f.repo.FindSeat(ctx, "show-2", "H3")
	require.NoError(t, err)
	assert.Equal(t, models.SeatLocked, seat.State)

	sweeper := locks.NewSweeper(f.manager, time.Second, logger.NewNop())
	assert.Zero(t, sweeper.Sweep(ctx))
}

func TestConcurrentLocksNeverDoubleHold(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	results := make([]*models.LockResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.manager.LockSeats(ctx, "show-1", []string{"A5", "A6"}, 0)
		}(i)
	}
	wg.Wait()

	holders := map[string]int{}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		for _, id := range results[i].LockedSeats {
			holders[id]++
		}
	}
	assert.Equal(t, map[string]int{"A5": 1, "A6": 1}, holders)
}

func TestExclusiveWrapsStorageErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.manager.Exclusive(ctx, "show-1", func(ctx context.Context, repo db.Repository) error {
		return errors.New("disk on fire")
	})
	assert.ErrorIs(t, err, models.ErrPersistence)

	err = f.manager.Exclusive(ctx, "show-1", func(ctx context.Context, repo db.Repository) error {
		return models.ErrSeatsNotLocked
	})
	assert.ErrorIs(t, err, models.ErrSeatsNotLocked)
	assert.NotErrorIs(t, err, models.ErrPersistence)
}

func TestExclusiveReclaimSurvivesFailedWork(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.LockSeats(ctx, "show-1", []string{"A1"}, time.Minute)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	err = f.manager.Exclusive(ctx, "show-1", func(ctx context.Context, repo db.Repository) error {
		seat, err := repo.FindSeat(ctx, "show-1", "A1")
		require.NoError(t, err)
		assert.Equal(t, models.SeatAvailable, seat.State)
		return errors.New("work failed")
	})
	require.ErrorIs(t, err, models.ErrPersistence)

	assert.Equal(t, models.SeatAvailable, seatState(t, f, "A1"))
}

func TestSweeperStopsWithContext(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		locks.NewSweeper(f.manager, 10*time.Millisecond, logger.NewNop()).Run(ctx)
		close(done)
	}()

	_, err := f.manager.LockSeats(context.Background(), "show-1", []string{"J1"}, time.Second)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	assert.Eventually(t, func() bool {
		seat, err := f.repo.FindSeat(context.Background(), "show-1", "J1")
		return err == nil && seat.State == models.SeatAvailable
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestLockSeatsReportsUnknownIdsAsSent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	requested := []string{" A1", "ZZ9", "  ", "", "A2", "A2"}
	res, err := f.manager.LockSeats(ctx, "show-1", requested, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"A2"}, res.LockedSeats)
	assert.Equal(t, []string{" A1", "ZZ9", "  ", ""}, res.FailedSeats)
	assert.ElementsMatch(t, []string{" A1", "ZZ9", "  ", "", "A2"}, append(res.LockedSeats, res.FailedSeats...))
	assert.Equal(t, models.SeatAvailable, seatState(t, f, "A1"))
}
