package db

import (
	"context"
	"fmt"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

// ---------------- SHOWS ----------------

// CreateShow inserts the show and its seat layout.
func (d *DB) CreateShow(ctx context.Context, show *models.Show) error {
	return d.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		tx := repo.(*DB).idb()
		if _, err := tx.NewInsert().Model(show).Exec(ctx); err != nil {
			return fmt.Errorf("insert show %s: %w", show.ID, err)
		}
		if len(show.Seats) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&show.Seats).Exec(ctx); err != nil {
			return fmt.Errorf("insert seats for show %s: %w", show.ID, err)
		}
		return nil
	})
}

// GetShow → show with its seats in layout order
func (d *DB) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	var show models.Show
	err := d.idb().NewSelect().
		Model(&show).
		Where("id = ?", showID).
		Relation("Seats", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &show, nil
}

// GetShowMeta → show without seats
func (d *DB) GetShowMeta(ctx context.Context, showID string) (*models.Show, error) {
	var show models.Show
	err := d.idb().NewSelect().
		Model(&show).
		Where("id = ?", showID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &show, nil
}

func (d *DB) ListShowsByMovie(ctx context.Context, movieID string) ([]models.Show, error) {
	shows := []models.Show{}
	err := d.idb().NewSelect().
		Model(&shows).
		Where("movie_id = ?", movieID).
		Order("show_date ASC", "show_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return shows, nil
}
