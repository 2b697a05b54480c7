package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Show is one screening of a movie. It owns its seat layout.
type Show struct {
	bun.BaseModel `bun:"table:shows"`

	ID        string    `bun:"id,pk" json:"id"`
	MovieID   string    `bun:"movie_id,notnull" json:"movieId"`
	Theatre   string    `bun:"theatre,notnull" json:"theatre"`
	Date      string    `bun:"show_date,notnull" json:"date"`
	Time      string    `bun:"show_time,notnull" json:"time"`
	Price     float64   `bun:"price,notnull" json:"price"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`

	Seats []Seat `bun:"rel:has-many,join:id=show_id" json:"seatsLayout,omitempty"`
}

type CreateShowRequest struct {
	ID          string   `json:"id,omitempty"`
	MovieID     string   `json:"movieId" validate:"required"`
	Theatre     string   `json:"theatre" validate:"required"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string   `json:"time" validate:"required,datetime=15:04"`
	Price       float64  `json:"price" validate:"gt=0"`
	Rows        []string `json:"rows,omitempty" validate:"omitempty,max=26,dive,required,alpha,max=2"`
	SeatsPerRow int      `json:"seatsPerRow,omitempty" validate:"gte=0,lte=50"`
}
