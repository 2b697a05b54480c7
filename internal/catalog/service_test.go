package catalog

import (
	"context"
	"testing"
	"time"

	"ms-booking/internal/db/dbtest"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.New(t), logger.NewNop())
}

func TestCreateShowGeneratesLayout(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	require.NoError(t, s.CreateMovie(ctx, &models.Movie{ID: "m1", Title: "Dude"}))

	show, err := s.CreateShow(ctx, models.CreateShowRequest{
		MovieID: "m1", Theatre: "Grand Cinema", Date: "2025-10-20", Time: "18:30", Price: 12.5,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^show_\d+_\d{6}$`, show.ID)
	require.Len(t, show.Seats, 80)
	assert.Equal(t, "A1", show.Seats[0].ID)
	assert.Equal(t, "H10", show.Seats[79].ID)
	for _, seat := range show.Seats {
		assert.Equal(t, models.SeatAvailable, seat.State)
		assert.Equal(t, 12.5, seat.Price)
	}

	custom, err := s.CreateShow(ctx, models.CreateShowRequest{
		ID: "s-custom", MovieID: "m1", Theatre: "Grand Cinema", Date: "2025-10-20", Time: "21:00", Price: 10,
		Rows: []string{"a", "b"}, SeatsPerRow: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "s-custom", custom.ID)
	assert.Len(t, custom.Seats, 8)

	shows, err := s.ListShowsForMovie(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, shows, 2)
}

func TestCreateShowRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	require.NoError(t, s.CreateMovie(ctx, &models.Movie{ID: "m1", Title: "Dude"}))

	_, err := s.CreateShow(ctx, models.CreateShowRequest{MovieID: "nope", Theatre: "X", Date: "2025-10-20", Time: "18:30", Price: 10})
	assert.ErrorIs(t, err, models.ErrMovieNotFound)

	_, err = s.CreateShow(ctx, models.CreateShowRequest{MovieID: "m1", Theatre: "X", Date: "20-10-2025", Time: "18:30", Price: 10})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = s.CreateShow(ctx, models.CreateShowRequest{MovieID: "m1", Theatre: "X", Date: "2025-10-20", Time: "18:30", Price: 0})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = s.CreateShow(ctx, models.CreateShowRequest{MovieID: "m1", Theatre: "X", Date: "2025-10-20", Time: "18:30", Price: 5, SeatsPerRow: 51})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	// "A" and "a" would both produce seat A1
	_, err = s.CreateShow(ctx, models.CreateShowRequest{MovieID: "m1", Theatre: "X", Date: "2025-10-20", Time: "18:30", Price: 5, Rows: []string{"A", "a"}})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestMovies(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.GetMovie(ctx, "m1")
	assert.ErrorIs(t, err, models.ErrMovieNotFound)
	_, err = s.ListShowsForMovie(ctx, "m1")
	assert.ErrorIs(t, err, models.ErrMovieNotFound)
	assert.ErrorIs(t, s.CreateMovie(ctx, &models.Movie{ID: "m1"}), models.ErrInvalidRequest)
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	start := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	n, err := s.Seed(ctx, SeedOptions{Start: start, Days: 1})
	require.NoError(t, err)
	assert.Equal(t, len(demoMovies)*len(demoTheatres)*len(demoTimes), n)

	again, err := s.Seed(ctx, SeedOptions{Start: start, Days: 1})
	require.NoError(t, err)
	assert.Zero(t, again)

	movies, err := s.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, len(demoMovies))

	shows, err := s.ListShowsForMovie(ctx, "E-3")
	require.NoError(t, err)
	require.Len(t, shows, len(demoTheatres)*len(demoTimes))
	for _, show := range shows {
		assert.GreaterOrEqual(t, show.Price, 300.0)
		assert.Less(t, show.Price, 800.0)
	}
	assert.Equal(t, "E-3-2025-10-20-GrandCinema-1730", demoShowID("E-3", "2025-10-20", "Grand Cinema", "17:30"))
}
