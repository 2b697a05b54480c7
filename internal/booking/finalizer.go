// Package booking turns a seat hold into a paid booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ms-booking/internal/db"
	"ms-booking/internal/events"
	"ms-booking/internal/locks"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seats"
	"ms-booking/internal/utils"

	"github.com/go-playground/validator/v10"
)

// PaymentProcessor charges the user for a booking. A decline must wrap
// models.ErrPaymentDeclined.
type PaymentProcessor interface {
	Charge(ctx context.Context, userID string, amount float64, method string) (*models.Payment, error)
}

type Finalizer struct {
	repo      db.Repository
	locks     *locks.Manager
	payments  PaymentProcessor
	publisher events.Publisher
	logger    *logger.Logger
	validate  *validator.Validate
}

func NewFinalizer(repo db.Repository, manager *locks.Manager, payments PaymentProcessor, publisher events.Publisher, log *logger.Logger) *Finalizer {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Finalizer{
		repo:      repo,
		locks:     manager,
		payments:  payments,
		publisher: publisher,
		logger:    log,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// outcome collects what a committed finalize changed, for the events sent
// after commit.
type outcome struct {
	booking  *models.Booking
	released []string
}

// Finalize books the requested seats held by req.LockToken. Either the
// booking, its payment and every seat change commit together or nothing
// changes.
func (f *Finalizer) Finalize(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := f.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	requested := seats.Dedupe(req.SeatIDs)
	if len(requested) == 0 {
		return nil, models.ErrNoSeatsRequested
	}

	var out outcome
	err := f.locks.Exclusive(ctx, req.ShowID, func(ctx context.Context, repo db.Repository) error {
		held, err := repo.SeatsByLockToken(ctx, req.LockToken)
		if err != nil {
			return err
		}
		lock := models.LockFromSeats(req.LockToken, held, f.locks.Now())
		if lock == nil {
			return models.ErrInvalidOrExpiredLock
		}
		if lock.ShowID != req.ShowID {
			return models.ErrLockShowMismatch
		}
		if missing := lock.Missing(requested); len(missing) > 0 {
			return fmt.Errorf("%w: %s", models.ErrSeatsNotLocked, strings.Join(missing, ", "))
		}

		show, err := repo.GetShowMeta(ctx, req.ShowID)
		if errors.Is(err, db.ErrNotFound) {
			return models.ErrShowNotFound
		}
		if err != nil {
			return err
		}
		movieTitle := ""
		if movie, err := repo.GetMovie(ctx, show.MovieID); err == nil {
			movieTitle = movie.Title
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}

		booking := &models.Booking{
			ID:         utils.GenerateBookingID(),
			UserID:     req.UserID,
			ShowID:     req.ShowID,
			MovieTitle: movieTitle,
			Theatre:    show.Theatre,
			ShowDate:   show.Date,
			ShowTime:   show.Time,
			Seats:      bookingSeats(held, requested),
			CreatedAt:  f.locks.Now(),
		}
		for _, s := range booking.Seats {
			booking.Total += s.Price
		}

		payment, err := f.payments.Charge(ctx, req.UserID, booking.Total, req.PaymentMethod)
		if err != nil {
			return err
		}

		booked, err := repo.BookSeats(ctx, req.ShowID, req.LockToken, requested)
		if err != nil {
			return err
		}
		if booked != len(requested) {
			return fmt.Errorf("%w: booked %d of %d seats", models.ErrSeatsNotLocked, booked, len(requested))
		}

		released, err := repo.ReleaseByToken(ctx, req.LockToken)
		if err != nil {
			return err
		}

		if err := repo.CreateBooking(ctx, booking); err != nil {
			return err
		}
		payment.BookingID = booking.ID
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}

		out = outcome{booking: booking, released: released}
		return nil
	})
	if err != nil {
		f.logger.Warn("BOOKING", fmt.Sprintf("finalize for show %s rejected: %v", req.ShowID, err))
		return nil, err
	}

	f.afterCommit(ctx, out)
	return out.booking, nil
}

func (f *Finalizer) afterCommit(ctx context.Context, out outcome) {
	b := out.booking
	f.logger.LogBooking("CONFIRMED", b.ID, fmt.Sprintf("user=%s show=%s seats=%s total=%.2f", b.UserID, b.ShowID, strings.Join(b.SeatIDs(), ","), b.Total))

	if err := f.publisher.PublishSeatStatus(ctx, models.NewSeatStatusChangeEvent(b.ShowID, b.SeatIDs(), models.SeatBooked)); err != nil {
		f.logger.Warn("EVENTS", fmt.Sprintf("booked seat event for %s not published: %v", b.ID, err))
	}
	if len(out.released) > 0 {
		f.logger.LogLock("RELEASE", b.ShowID, fmt.Sprintf("unbooked seats of the hold released: %s", strings.Join(out.released, ",")))
		if err := f.publisher.PublishSeatStatus(ctx, models.NewSeatStatusChangeEvent(b.ShowID, out.released, models.SeatAvailable)); err != nil {
			f.logger.Warn("EVENTS", fmt.Sprintf("released seat event for %s not published: %v", b.ID, err))
		}
	}
	if err := f.publisher.PublishBookingConfirmed(ctx, models.NewBookingConfirmedEvent(b)); err != nil {
		f.logger.Warn("EVENTS", fmt.Sprintf("booking confirmed event for %s not published: %v", b.ID, err))
	}
}

// bookingSeats copies the held seats in request order.
func bookingSeats(held []models.Seat, requested []string) []models.BookingSeat {
	out := make([]models.BookingSeat, 0, len(requested))
	for _, id := range requested {
		seat, ok := seats.Find(held, id)
		if !ok {
			continue
		}
		out = append(out, models.BookingSeat{ID: seat.ID, Row: seat.Row, Number: seat.Number, Price: seat.Price})
	}
	return out
}

func (f *Finalizer) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := f.repo.GetBooking(ctx, bookingID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return b, nil
}

// ListForUser returns the user's bookings, newest first.
func (f *Finalizer) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidRequest)
	}
	list, err := f.repo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return list, nil
}

// Payment returns the payment recorded with a booking.
func (f *Finalizer) Payment(ctx context.Context, bookingID string) (*models.Payment, error) {
	p, err := f.repo.GetPaymentByBooking(ctx, bookingID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return p, nil
}
