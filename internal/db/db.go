package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("record not found")

type ShowStore interface {
	CreateShow(ctx context.Context, show *models.Show) error
	GetShow(ctx context.Context, showID string) (*models.Show, error)
	GetShowMeta(ctx context.Context, showID string) (*models.Show, error)
	ListShowsByMovie(ctx context.Context, movieID string) ([]models.Show, error)
}

// SeatStore is the seat inventory and the lock table. A lock is the set of
// locked seats sharing a lock_token.
type SeatStore interface {
	FindSeat(ctx context.Context, showID, seatID string) (*models.Seat, error)
	SetSeatState(ctx context.Context, showID, seatID string, state models.SeatState) error
	TryLockSeat(ctx context.Context, showID, seatID, token string, until time.Time) (bool, error)
	SeatsByLockToken(ctx context.Context, token string) ([]models.Seat, error)
	LockedSeats(ctx context.Context, showID string) ([]models.Seat, error)
	ShowsWithExpiredLocks(ctx context.Context, now time.Time) ([]string, error)
	ReleaseSeats(ctx context.Context, showID string, seatIDs []string) (int, error)
	ReleaseByToken(ctx context.Context, token string) ([]string, error)
	BookSeats(ctx context.Context, showID, token string, seatIDs []string) (int, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error)
}

type MovieStore interface {
	CreateMovie(ctx context.Context, movie *models.Movie) error
	GetMovie(ctx context.Context, movieID string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
}

type Repository interface {
	ShowStore
	SeatStore
	BookingStore
	MovieStore

	// RunInTx runs fn in a transaction. The repository passed to fn is bound
	// to it; fn must not touch the outer repository.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

type DB struct {
	Bun  *bun.DB
	conn bun.IDB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

func (d *DB) idb() bun.IDB {
	if d.conn != nil {
		return d.conn
	}
	return d.Bun
}

func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if d.conn != nil {
		return fn(ctx, d)
	}
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: d.Bun, conn: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
