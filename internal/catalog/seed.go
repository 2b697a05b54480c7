package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/models"
)

var demoMovies = []models.Movie{
	{
		ID:        "E-1",
		Title:     "Dude",
		Synopsis:  "A 2025 Tamil-language romantic action comedy written and directed by Keerthiswaran.",
		PosterURL: "https://upload.wikimedia.org/wikipedia/en/d/de/Dude_%282025%29_Poster.jpeg",
		Duration:  140,
		Genres:    []string{"Comedy", "Action", "Romance", "Drama"},
	},
	{
		ID:        "E-2",
		Title:     "Bison: Kaalamaadan",
		Synopsis:  "A young man fights to overcome violence plaguing his village and succeed as a professional kabaddi player.",
		PosterURL: "https://upload.wikimedia.org/wikipedia/en/0/0d/Bison_2025_poster.jpg",
		Duration:  169,
		Genres:    []string{"Biography", "Action", "Drama"},
	},
	{
		ID:        "E-3",
		Title:     "Kantara: Chapter 1",
		Synopsis:  "The legend of the Kadamba-era forests and the divine guardian who protects them.",
		PosterURL: "https://upload.wikimedia.org/wikipedia/en/6/69/Kantara-_Chapter_1_poster.jpg",
		Duration:  168,
		Genres:    []string{"Drama", "Thriller", "Adventure"},
		Rating:    8.6,
	},
	{
		ID:        "E-4",
		Title:     "Idli Kadai",
		Synopsis:  "A man's search for success leads him to rediscover his roots.",
		PosterURL: "https://upload.wikimedia.org/wikipedia/en/1/14/Idly_Kadai.jpg",
		Duration:  194,
		Genres:    []string{"Action", "Drama", "Family"},
		Rating:    7.9,
	},
	{
		ID:        "A-3",
		Title:     "Demon Slayer: Infinity Castle",
		Synopsis:  "Tanjiro and his allies confront Muzan in the Infinity Castle in a climactic battle across shifting domains.",
		PosterURL: "https://image.tmdb.org/t/p/w500/yF8acglZWjMgmdaJuLIZjdlbTYd.jpg",
		Duration:  130,
		Genres:    []string{"Anime", "Action", "Fantasy"},
		Rating:    8.2,
	},
	{
		ID:        "E-13",
		Title:     "Avengers: Endgame",
		Synopsis:  "The Avengers assemble once more in order to reverse Thanos' actions and restore balance.",
		PosterURL: "https://upload.wikimedia.org/wikipedia/en/0/0d/Avengers_Endgame_poster.jpg",
		Duration:  181,
		Genres:    []string{"English", "Action", "Sci-Fi"},
		Rating:    8.4,
	},
}

var (
	demoTheatres = []string{"Cineplex Downtown", "StarView Mall", "Grand Cinema", "Metro Theater"}
	demoTimes    = []string{"10:00", "13:30", "17:00", "20:30"}
)

// SeedOptions controls how much demo data Seed writes.
type SeedOptions struct {
	Start time.Time
	Days  int
}

// Seed inserts the demo movies and their shows. Movies that already exist are
// skipped along with their shows, so running it twice is harmless.
func (s *Service) Seed(ctx context.Context, opts SeedOptions) (int, error) {
	if opts.Start.IsZero() {
		opts.Start = time.Now().UTC()
	}
	if opts.Days <= 0 {
		opts.Days = 3
	}

	created := 0
	for i := range demoMovies {
		movie := demoMovies[i]
		if _, err := s.GetMovie(ctx, movie.ID); err == nil {
			continue
		} else if !errors.Is(err, models.ErrMovieNotFound) {
			return created, err
		}
		if err := s.CreateMovie(ctx, &movie); err != nil {
			return created, err
		}

		for d := 0; d < opts.Days; d++ {
			date := opts.Start.AddDate(0, 0, d).Format("2006-01-02")
			for t, theatre := range demoTheatres {
				for k, showTime := range demoTimes {
					req := models.CreateShowRequest{
						ID:      demoShowID(movie.ID, date, theatre, showTime),
						MovieID: movie.ID,
						Theatre: theatre,
						Date:    date,
						Time:    showTime,
						Price:   demoPrice(i, d, t, k),
					}
					if _, err := s.CreateShow(ctx, req); err != nil {
						return created, fmt.Errorf("seed show %s: %w", req.ID, err)
					}
					created++
				}
			}
		}
	}
	s.logger.Info("SEED", fmt.Sprintf("Seeded %d shows", created))
	return created, nil
}

// demoShowID reads like E-1-2025-10-20-GrandCinema-1730.
func demoShowID(movieID, date, theatre, showTime string) string {
	return fmt.Sprintf("%s-%s-%s-%s", movieID, date, strings.ReplaceAll(theatre, " ", ""), strings.ReplaceAll(showTime, ":", ""))
}

// demoPrice spreads prices between 300 and 799 without randomness.
func demoPrice(movie, day, theatre, slot int) float64 {
	return float64(300 + (movie*131+day*53+theatre*97+slot*29)%500)
}
