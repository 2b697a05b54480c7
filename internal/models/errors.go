package models

import "errors"

var (
	ErrShowNotFound         = errors.New("show not found")
	ErrMovieNotFound        = errors.New("movie not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrNoSeatsRequested     = errors.New("no seats requested")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidOrExpiredLock = errors.New("invalid or expired lock token")
	ErrLockShowMismatch     = errors.New("lock token does not match show")
	ErrSeatsNotLocked       = errors.New("some seats are not locked with this token")
	ErrInvalidTransition    = errors.New("invalid seat state transition")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrPersistence          = errors.New("storage unavailable")
)

var domainErrors = []error{
	ErrShowNotFound,
	ErrMovieNotFound,
	ErrBookingNotFound,
	ErrNoSeatsRequested,
	ErrInvalidRequest,
	ErrInvalidOrExpiredLock,
	ErrLockShowMismatch,
	ErrSeatsNotLocked,
	ErrInvalidTransition,
	ErrPaymentDeclined,
	ErrPersistence,
}

// IsDomainError reports whether err is one of the errors above, wrapped or not.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
