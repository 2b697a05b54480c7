package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingSeat struct {
	ID     string  `json:"id"`
	Row    string  `json:"row"`
	Number int     `json:"number"`
	Price  float64 `json:"price"`
}

// Booking is immutable once written. Show and movie fields are copied at
// booking time.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         string        `bun:"id,pk" json:"id"`
	UserID     string        `bun:"user_id,notnull" json:"userId"`
	ShowID     string        `bun:"show_id,notnull" json:"showId"`
	MovieTitle string        `bun:"movie_title" json:"movieTitle,omitempty"`
	Theatre    string        `bun:"theatre" json:"theatre,omitempty"`
	ShowDate   string        `bun:"show_date" json:"showDate,omitempty"`
	ShowTime   string        `bun:"show_time" json:"showTime,omitempty"`
	Seats      []BookingSeat `bun:"seats,notnull" json:"seats"`
	Total      float64       `bun:"total,notnull" json:"total"`
	CreatedAt  time.Time     `bun:"created_at,notnull" json:"createdAt"`
}

// SeatIDs returns the booked seat ids in booking order.
func (b *Booking) SeatIDs() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.ID)
	}
	return ids
}

type BookingRequest struct {
	UserID        string   `json:"userId" validate:"required"`
	ShowID        string   `json:"showId" validate:"required"`
	SeatIDs       []string `json:"seatIds" validate:"required,min=1,dive,required"`
	LockToken     string   `json:"lockToken" validate:"required"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
}
