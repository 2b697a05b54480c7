package api

import (
	"net/http"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", h.ListMovies)
			r.Get("/{movieId}", h.GetMovie)
			r.Get("/{movieId}/shows", h.ListShowsForMovie)
		})

		r.Route("/shows", func(r chi.Router) {
			r.Post("/", h.CreateShow)
			r.Get("/{showId}", h.GetShow)
			r.Post("/{showId}/lock", h.LockSeats)
			r.Get("/{showId}/events", h.StreamShowEvents)
		})
		r.Delete("/locks/{lockToken}", h.ReleaseLock)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.Verifier, h.Logger))
			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", h.CreateBooking)
				r.Get("/", h.ListBookings)
				r.Get("/{bookingId}", h.GetBooking)
				r.Get("/{bookingId}/pass", h.GetBookingPass)
			})
		})
	})

	return r
}
