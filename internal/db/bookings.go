package db

import (
	"context"
	"fmt"

	"ms-booking/internal/models"
)

// ---------------- BOOKINGS ----------------

func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := d.idb().NewInsert().Model(booking).Exec(ctx); err != nil {
		return fmt.Errorf("insert booking %s: %w", booking.ID, err)
	}
	return nil
}

func (d *DB) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.idb().NewSelect().
		Model(&booking).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

// ListBookingsByUser → newest first
func (d *DB) ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.idb().NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ---------------- PAYMENTS ----------------

func (d *DB) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if _, err := d.idb().NewInsert().Model(payment).Exec(ctx); err != nil {
		return fmt.Errorf("insert payment %s: %w", payment.ID, err)
	}
	return nil
}

func (d *DB) GetPaymentByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	var payment models.Payment
	err := d.idb().NewSelect().
		Model(&payment).
		Where("booking_id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}
