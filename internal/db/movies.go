package db

import (
	"context"
	"fmt"

	"ms-booking/internal/models"
)

// ---------------- MOVIES ----------------

func (d *DB) CreateMovie(ctx context.Context, movie *models.Movie) error {
	if _, err := d.idb().NewInsert().Model(movie).Exec(ctx); err != nil {
		return fmt.Errorf("insert movie %s: %w", movie.ID, err)
	}
	return nil
}

func (d *DB) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	var movie models.Movie
	err := d.idb().NewSelect().
		Model(&movie).
		Where("id = ?", movieID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &movie, nil
}

func (d *DB) ListMovies(ctx context.Context) ([]models.Movie, error) {
	movies := []models.Movie{}
	if err := d.idb().NewSelect().Model(&movies).Order("title ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return movies, nil
}
