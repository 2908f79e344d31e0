package domain

import (
	"context"
	"time"
)

// Booking status values. pending -> {confirmed, rejected};
// confirmed -> cancelled; rejected ends in deletion (resubmission path).
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
	BookingStatusAttended  = "attended"
)

// Booking represents a single attendee's reservation against an event.
// swagger:model Booking
type Booking struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EventID    string    `json:"event_id"`
	Seats      int       `json:"seats"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsActive reports whether the booking currently holds seats.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// BookingContact is the attendee contact captured with a reservation.
type BookingContact struct {
	Name  string
	Email string
	Phone string
}

// BookingWithEvent bundles a booking with its related event for list views.
type BookingWithEvent struct {
	Booking *Booking `json:"booking"`
	Event   *Event   `json:"event"`
}

// BookingRequest is a pending booking as seen by the event's organizer.
type BookingRequest struct {
	Booking    *Booking `json:"booking"`
	EventTitle string   `json:"event_title"`
}

// BookingRepository defines storage for bookings. CreateWithReservation and
// the release variants are transactional: the capacity check, the seat
// counter update, and the booking row change commit or roll back together.
type BookingRepository interface {
	// CreateWithReservation atomically checks capacity, rejects a second
	// active booking for the same (user, event), decrements the event's
	// available seats when capacity is set, and inserts the booking.
	// Errors: ErrNotFound (event), ErrAlreadyBooked, ErrCapacityExceeded.
	CreateWithReservation(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUserID(ctx context.Context, userID string) ([]*Booking, error)
	ListPendingByEventIDs(ctx context.Context, eventIDs []string) ([]*Booking, error)
	// DeleteWithRelease removes the booking and, when releaseSeats is true,
	// returns its seats to the event's available pool (bounded by capacity).
	DeleteWithRelease(ctx context.Context, booking *Booking, releaseSeats bool) error
	// TransitionStatus moves the booking from fromStatus to toStatus,
	// optionally releasing its held seats in the same transaction.
	// Returns ErrInvalidTransition if the booking is not in fromStatus.
	TransitionStatus(ctx context.Context, booking *Booking, fromStatus, toStatus string, releaseSeats bool) error
}

// BookingService orchestrates the reservation workflow: creation,
// cancellation, and the organizer's approve/reject decisions.
type BookingService interface {
	Create(ctx context.Context, eventID, userID string, contact BookingContact, seats int) (*Booking, error)
	Cancel(ctx context.Context, bookingID, requesterID, requesterRole string) error
	ListMine(ctx context.Context, userID string) ([]*BookingWithEvent, error)
	ListRequests(ctx context.Context, organizerID, eventID string) ([]*BookingRequest, error)
	Approve(ctx context.Context, bookingID, organizerID string) error
	Reject(ctx context.Context, bookingID, organizerID string) error
}
