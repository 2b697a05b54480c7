// Package events defines where seat and booking notifications go.
package events

import (
	"context"
	"errors"

	"ms-booking/internal/models"
)

// Publisher receives events after the change they describe has committed.
// Failures are reported to the caller but never undo the change.
type Publisher interface {
	PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error
	PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error
}

type Noop struct{}

func (Noop) PublishSeatStatus(context.Context, models.SeatStatusChangeEvent) error { return nil }

func (Noop) PublishBookingConfirmed(context.Context, models.BookingConfirmedEvent) error { return nil }

// Multi fans every event out to all publishers and joins their errors.
type Multi []Publisher

func (m Multi) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSeatStatus(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PublishBookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishBookingConfirmed(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
