package models

import "time"

// Lock is a hold on one or more seats of a show. It is not stored on its own:
// it is rebuilt from the seats that carry its token.
type Lock struct {
	Token     string    `json:"lockToken"`
	ShowID    string    `json:"showId"`
	SeatIDs   []string  `json:"seatIds"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LockFromSeats rebuilds the lock for token from the seats carrying it.
// Seats that are no longer locked or whose hold ended at or before now are
// ignored. It returns nil when nothing is held.
func LockFromSeats(token string, seats []Seat, now time.Time) *Lock {
	var lock *Lock
	for _, seat := range seats {
		if seat.LockToken != token || seat.State != SeatLocked || !seat.LockedUntil.After(now) {
			continue
		}
		if lock == nil {
			lock = &Lock{Token: token, ShowID: seat.ShowID, ExpiresAt: seat.LockedUntil}
		}
		lock.SeatIDs = append(lock.SeatIDs, seat.ID)
	}
	return lock
}

// Missing returns the ids in seatIDs the lock does not hold, in input order.
func (l *Lock) Missing(seatIDs []string) []string {
	held := make(map[string]struct{}, len(l.SeatIDs))
	for _, id := range l.SeatIDs {
		held[id] = struct{}{}
	}
	var missing []string
	for _, id := range seatIDs {
		if _, ok := held[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

type LockRequest struct {
	SeatIDs     []string `json:"seatIds" validate:"required,min=1,max=100,dive,required"`
	HoldSeconds int      `json:"holdSeconds,omitempty" validate:"gte=0"`
}

type LockResult struct {
	LockToken   string    `json:"lockToken"`
	LockedSeats []string  `json:"lockedSeats"`
	FailedSeats []string  `json:"failedSeats"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
