package db

import (
	"context"
	"fmt"
	"time"

	"ms-booking/internal/models"
	"ms-booking/internal/seats"

	"github.com/uptrace/bun"
)

// ---------------- SEATS ----------------

// FindSeat reads one seat. Lock and book paths do not read-then-write through
// it; they use the conditional updates below.
func (d *DB) FindSeat(ctx context.Context, showID, seatID string) (*models.Seat, error) {
	var seat models.Seat
	err := d.idb().NewSelect().
		Model(&seat).
		Where("show_id = ?", showID).
		Where("seat_id = ?", seatID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &seat, nil
}

// SetSeatState applies a checked transition to one seat. Hold fields are
// cleared unless the new state is locked. It serves admin and test fixes;
// holds and bookings go through TryLockSeat, BookSeats and ReleaseSeats.
func (d *DB) SetSeatState(ctx context.Context, showID, seatID string, state models.SeatState) error {
	seat, err := d.FindSeat(ctx, showID, seatID)
	if err != nil {
		return err
	}
	if err := seats.Transition(seat, state); err != nil {
		return err
	}
	_, err = d.idb().NewUpdate().
		Model(seat).
		Column("state", "lock_token", "locked_until").
		WherePK().
		Exec(ctx)
	return err
}

// ---------------- LOCKS ----------------

// TryLockSeat locks one seat if, and only if, it is available right now.
func (d *DB) TryLockSeat(ctx context.Context, showID, seatID, token string, until time.Time) (bool, error) {
	res, err := d.idb().NewUpdate().
		Model((*models.Seat)(nil)).
		Set("state = ?", models.SeatLocked).
		Set("lock_token = ?", token).
		Set("locked_until = ?", until).
		Where("show_id = ?", showID).
		Where("seat_id = ?", seatID).
		Where("state = ?", models.SeatAvailable).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("lock seat %s/%s: %w", showID, seatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SeatsByLockToken → every seat currently carrying the token
func (d *DB) SeatsByLockToken(ctx context.Context, token string) ([]models.Seat, error) {
	held := []models.Seat{}
	err := d.idb().NewSelect().
		Model(&held).
		Where("lock_token = ?", token).
		Order("show_id ASC", "position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return held, nil
}

func (d *DB) LockedSeats(ctx context.Context, showID string) ([]models.Seat, error) {
	locked := []models.Seat{}
	err := d.idb().NewSelect().
		Model(&locked).
		Where("show_id = ?", showID).
		Where("state = ?", models.SeatLocked).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return locked, nil
}

// ShowsWithExpiredLocks lists shows holding at least one seat whose hold
// ended at or before now.
func (d *DB) ShowsWithExpiredLocks(ctx context.Context, now time.Time) ([]string, error) {
	var rows []models.Seat
	err := d.idb().NewSelect().
		Model(&rows).
		Column("show_id", "locked_until").
		Where("state = ?", models.SeatLocked).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var shows []string
	for _, r := range rows {
		if r.LockedUntil.After(now) || seen[r.ShowID] {
			continue
		}
		seen[r.ShowID] = true
		shows = append(shows, r.ShowID)
	}
	return shows, nil
}

// ReleaseSeats returns locked seats of a show to available.
func (d *DB) ReleaseSeats(ctx context.Context, showID string, seatIDs []string) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	res, err := d.idb().NewUpdate().
		Model((*models.Seat)(nil)).
		Set("state = ?", models.SeatAvailable).
		Set("lock_token = NULL").
		Set("locked_until = NULL").
		Where("show_id = ?", showID).
		Where("seat_id IN (?)", bun.In(seatIDs)).
		Where("state = ?", models.SeatLocked).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("release seats of show %s: %w", showID, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ReleaseByToken returns every seat still locked under token to available
// and reports which seats were released.
func (d *DB) ReleaseByToken(ctx context.Context, token string) ([]string, error) {
	held, err := d.SeatsByLockToken(ctx, token)
	if err != nil {
		return nil, err
	}
	byShow := make(map[string][]string)
	var order []string
	for _, seat := range held {
		if seat.State != models.SeatLocked {
			continue
		}
		if _, ok := byShow[seat.ShowID]; !ok {
			order = append(order, seat.ShowID)
		}
		byShow[seat.ShowID] = append(byShow[seat.ShowID], seat.ID)
	}

	var released []string
	for _, showID := range order {
		if _, err := d.ReleaseSeats(ctx, showID, byShow[showID]); err != nil {
			return nil, err
		}
		released = append(released, byShow[showID]...)
	}
	return released, nil
}

// BookSeats moves seats held by token to booked and reports how many moved.
func (d *DB) BookSeats(ctx context.Context, showID, token string, seatIDs []string) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	res, err := d.idb().NewUpdate().
		Model((*models.Seat)(nil)).
		Set("state = ?", models.SeatBooked).
		Set("lock_token = NULL").
		Set("locked_until = NULL").
		Where("show_id = ?", showID).
		Where("seat_id IN (?)", bun.In(seatIDs)).
		Where("lock_token = ?", token).
		Where("state = ?", models.SeatLocked).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("book seats of show %s: %w", showID, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
