package helpers

import (
	"errors"
	"net/http"

	"eventticketing/internal/domain"
)

// WriteDomainError maps a service error to its HTTP status and error code and
// writes the JSON error response. Unrecognized errors become a 500 with the
// error's message.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, domain.ErrAlreadyBooked):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "an active booking for this event already exists")
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "not enough seats available")
	case errors.Is(err, domain.ErrInvalidTransition):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "booking is not awaiting a decision")
	default:
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
