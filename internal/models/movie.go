package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Movie struct {
	bun.BaseModel `bun:"table:movies"`

	ID        string    `bun:"id,pk" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Synopsis  string    `bun:"synopsis" json:"synopsis"`
	PosterURL string    `bun:"poster_url" json:"posterUrl"`
	Duration  int       `bun:"duration" json:"duration"`
	Genres    []string  `bun:"genres" json:"genres"`
	Rating    float64   `bun:"rating" json:"rating"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"-"`
}
