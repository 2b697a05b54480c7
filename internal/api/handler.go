// Package api exposes seat holds, bookings and the catalog over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	"ms-booking/internal/catalog"
	"ms-booking/internal/locks"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/sse"
	"ms-booking/internal/tickets"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Locks    *locks.Manager
	Bookings *booking.Finalizer
	Catalog  *catalog.Service
	Passes   *tickets.PassGenerator
	Events   *sse.ShowEventEmitter
	Verifier auth.Verifier
	Logger   *logger.Logger

	validate *validator.Validate
}

func NewHandler(h Handler) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	h.validate = v
	return &h
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeBadRequest(w, validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------- CATALOG ----------------

func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.Catalog.ListMovies(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, movies)
}

func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.Catalog.GetMovie(r.Context(), chi.URLParam(r, "movieId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, movie)
}

func (h *Handler) ListShowsForMovie(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Catalog.ListShowsForMovie(r.Context(), chi.URLParam(r, "movieId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, shows)
}

func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req models.CreateShowRequest
	if !h.decode(w, r, &req) {
		return
	}
	show, err := h.Catalog.CreateShow(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, show)
}

// ---------------- SHOWS & LOCKS ----------------

func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.Locks.GetShow(r.Context(), chi.URLParam(r, "showId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, show)
}

func (h *Handler) LockSeats(w http.ResponseWriter, r *http.Request) {
	var req models.LockRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.Locks.LockSeats(r.Context(), chi.URLParam(r, "showId"), req.SeatIDs, holdDuration(req.HoldSeconds))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// holdDuration converts seconds without wrapping; the manager applies the cap.
func holdDuration(seconds int) time.Duration {
	if int64(seconds) > math.MaxInt64/int64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds) * time.Second
}

func (h *Handler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	if err := h.Locks.ReleaseLock(r.Context(), chi.URLParam(r, "lockToken")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- BOOKINGS ----------------

// resolveUser reconciles a user id from the request with the token subject.
// With auth off the requested id is used as is.
func resolveUser(r *http.Request, requested string) (string, bool) {
	subject := auth.UserID(r.Context())
	if subject == "" {
		return requested, true
	}
	if requested == "" || requested == subject {
		return subject, true
	}
	return "", false
}

func writeForbidden(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("user does not match the authenticated subject", "FORBIDDEN"))
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}
	userID, ok := resolveUser(r, req.UserID)
	if !ok {
		writeForbidden(w)
		return
	}
	req.UserID = userID
	if err := h.validate.Struct(req); err != nil {
		writeBadRequest(w, validationMessage(err))
		return
	}

	b, err := h.Bookings.Finalize(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("user_id")
	if requested == "" {
		requested = r.URL.Query().Get("userId")
	}
	userID, ok := resolveUser(r, requested)
	if !ok {
		writeForbidden(w)
		return
	}
	list, err := h.Bookings.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

// ownedBooking loads the booking and checks it belongs to the caller.
func (h *Handler) ownedBooking(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if _, ok := resolveUser(r, b.UserID); !ok {
		writeForbidden(w)
		return nil, false
	}
	return b, true
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) GetBookingPass(w http.ResponseWriter, r *http.Request) {
	b, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}
	png, err := h.Passes.Generate(b)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("render pass for %s: %w", b.ID, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", b.ID+".png"))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
