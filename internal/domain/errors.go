package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; repositories translate driver errors into them.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCapacityExceeded   = errors.New("event capacity exceeded")
	ErrAlreadyBooked      = errors.New("active booking already exists for this event")
	ErrInvalidTransition  = errors.New("booking is not in a state that allows this transition")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
