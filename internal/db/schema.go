package db

import (
	"context"
	"fmt"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

var tables = []interface{}{
	(*models.Movie)(nil),
	(*models.Show)(nil),
	(*models.Seat)(nil),
	(*models.Booking)(nil),
	(*models.Payment)(nil),
}

// CreateSchema creates tables and indexes straight from the models. The
// postgres deployment uses the versioned migrations instead; this path serves
// sqlite and tests.
func CreateSchema(ctx context.Context, bunDB *bun.DB) error {
	for _, model := range tables {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{(*models.Seat)(nil), "idx_show_seats_lock_token", []string{"lock_token"}},
		{(*models.Seat)(nil), "idx_show_seats_state", []string{"show_id", "state"}},
		{(*models.Show)(nil), "idx_shows_movie", []string{"movie_id"}},
		{(*models.Booking)(nil), "idx_bookings_user", []string{"user_id", "created_at"}},
		{(*models.Payment)(nil), "idx_payments_booking", []string{"booking_id"}},
	}
	for _, idx := range indexes {
		_, err := bunDB.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
