package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatLocked    SeatState = "locked"
	SeatBooked    SeatState = "booked"
)

// CanTransition reports whether a seat may move from s to next.
// Booked is terminal.
func (s SeatState) CanTransition(next SeatState) bool {
	switch s {
	case SeatAvailable:
		return next == SeatLocked
	case SeatLocked:
		return next == SeatAvailable || next == SeatBooked
	default:
		return false
	}
}

// Seat is a single seat of a show. LockToken and LockedUntil are set only
// while the seat is locked, which makes a hold recoverable from storage alone.
type Seat struct {
	bun.BaseModel `bun:"table:show_seats"`

	ShowID      string    `bun:"show_id,pk" json:"-"`
	ID          string    `bun:"seat_id,pk" json:"id"`
	Row         string    `bun:"seat_row,notnull" json:"row"`
	Number      int       `bun:"seat_number,notnull" json:"number"`
	Position    int       `bun:"position,notnull" json:"-"`
	Price       float64   `bun:"price,notnull" json:"price"`
	State       SeatState `bun:"state,notnull" json:"state"`
	LockToken   string    `bun:"lock_token,nullzero" json:"-"`
	LockedUntil time.Time `bun:"locked_until,nullzero" json:"-"`
}
