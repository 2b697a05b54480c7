package models

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatusChangeEvent is published whenever seats of a show change state.
type SeatStatusChangeEvent struct {
	EventID    string    `json:"event_id"`
	ShowID     string    `json:"show_id"`
	SeatIDs    []string  `json:"seat_ids"`
	Status     SeatState `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewSeatStatusChangeEvent(showID string, seatIDs []string, status SeatState) SeatStatusChangeEvent {
	return SeatStatusChangeEvent{
		EventID:    uuid.NewString(),
		ShowID:     showID,
		SeatIDs:    seatIDs,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

type BookingConfirmedEvent struct {
	EventID    string    `json:"event_id"`
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	ShowID     string    `json:"show_id"`
	MovieTitle string    `json:"movie_title,omitempty"`
	SeatIDs    []string  `json:"seat_ids"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewBookingConfirmedEvent(b *Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		EventID:    uuid.NewString(),
		BookingID:  b.ID,
		UserID:     b.UserID,
		ShowID:     b.ShowID,
		MovieTitle: b.MovieTitle,
		SeatIDs:    b.SeatIDs(),
		Total:      b.Total,
		CreatedAt:  b.CreatedAt,
	}
}
