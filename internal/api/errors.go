package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-playground/validator/v10"
)

// statusFor maps domain errors onto HTTP. Anything unknown is a 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrShowNotFound):
		return http.StatusNotFound, "SHOW_NOT_FOUND"
	case errors.Is(err, models.ErrInvalidOrExpiredLock):
		return http.StatusGone, "INVALID_OR_EXPIRED_LOCK"
	case errors.Is(err, models.ErrLockShowMismatch):
		return http.StatusConflict, "LOCK_SHOW_MISMATCH"
	case errors.Is(err, models.ErrSeatsNotLocked):
		return http.StatusConflict, "SEATS_NOT_LOCKED"
	case errors.Is(err, models.ErrNoSeatsRequested),
		errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, models.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "PAYMENT_DECLINED"
	case errors.Is(err, models.ErrBookingNotFound), errors.Is(err, models.ErrMovieNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err))
		message = "internal error"
	}
	utils.WriteJSON(w, status, utils.ErrorResponse(message, code))
}

func writeBadRequest(w http.ResponseWriter, message string) {
	utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, "INVALID_REQUEST"))
}

// validationMessage turns validator output into "seatIds: min, price: gt".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}
