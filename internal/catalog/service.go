// Package catalog serves movies and their shows and creates new shows.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/db"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/seats"
	"ms-booking/internal/utils"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     db.Repository
	logger   *logger.Logger
	validate *validator.Validate
}

func NewService(repo db.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *Service) ListMovies(ctx context.Context) ([]models.Movie, error) {
	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return movies, nil
}

func (s *Service) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	movie, err := s.repo.GetMovie(ctx, movieID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return movie, nil
}

// ListShowsForMovie returns the movie's shows without seat layouts.
func (s *Service) ListShowsForMovie(ctx context.Context, movieID string) ([]models.Show, error) {
	if _, err := s.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	shows, err := s.repo.ListShowsByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return shows, nil
}

func (s *Service) CreateMovie(ctx context.Context, movie *models.Movie) error {
	if strings.TrimSpace(movie.ID) == "" || strings.TrimSpace(movie.Title) == "" {
		return fmt.Errorf("%w: movie id and title are required", models.ErrInvalidRequest)
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.CreateMovie(ctx, movie); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.logger.LogDatabase("INSERT", "movies", movie.ID)
	return nil
}

// CreateShow adds a show with a freshly generated, all-available layout.
func (s *Service) CreateShow(ctx context.Context, req models.CreateShowRequest) (*models.Show, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if _, err := s.GetMovie(ctx, req.MovieID); err != nil {
		return nil, err
	}

	rows := req.Rows
	if len(rows) == 0 {
		rows = seats.DefaultRows
	}
	if err := seats.CheckRows(rows); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	perRow := req.SeatsPerRow
	if perRow == 0 {
		perRow = seats.DefaultSeatsPerRow
	}
	showID := req.ID
	if showID == "" {
		showID = utils.GenerateShowID()
	}

	show := &models.Show{
		ID:        showID,
		MovieID:   req.MovieID,
		Theatre:   req.Theatre,
		Date:      req.Date,
		Time:      req.Time,
		Price:     req.Price,
		CreatedAt: time.Now().UTC(),
		Seats:     seats.Generate(showID, rows, perRow, req.Price),
	}
	if err := s.repo.CreateShow(ctx, show); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.logger.LogDatabase("INSERT", "shows", fmt.Sprintf("%s (%d seats)", show.ID, len(show.Seats)))
	return show, nil
}
