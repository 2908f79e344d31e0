package domain

import (
	"context"
	"time"
)

// Event represents a schedulable gathering with optional seat capacity and pricing.
// Capacity nil means unlimited; AvailableSeats is a derived cache maintained by
// the reservation transactions and the capacity re-derivation on edit.
// swagger:model Event
type Event struct {
	ID               string     `json:"id"`
	OrganizerID      string     `json:"organizer_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category"`
	IsOnline         bool       `json:"is_online"`
	MeetingLink      string     `json:"meeting_link,omitempty"`
	Location         string     `json:"location,omitempty"`
	StartsAt         time.Time  `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	CoverImageURL    string     `json:"cover_image_url,omitempty"`
	CoverImageFileID string     `json:"-"`
	Capacity         *int       `json:"capacity,omitempty"`
	AvailableSeats   *int       `json:"available_seats,omitempty"`
	IsPaid           bool       `json:"is_paid"`
	Price            float64    `json:"price"`
	AverageRating    float64    `json:"average_rating"`
	RatingCount      int        `json:"rating_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EventUpdate carries the full-field update applied by PUT /events/{id}.
// Capacity nil removes the limit; the service re-derives AvailableSeats.
type EventUpdate struct {
	Title            string
	Description      string
	Category         string
	IsOnline         bool
	MeetingLink      string
	Location         string
	StartsAt         time.Time
	EndsAt           *time.Time
	CoverImageURL    string
	CoverImageFileID string
	Capacity         *int
	IsPaid           bool
	Price            float64
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event and cascades its bookings, reviews, and
	// comments in a single transaction.
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management plus public reads.
type EventService interface {
	Create(ctx context.Context, organizerID string, update *EventUpdate) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListMine(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, eventID, requesterID, requesterRole string, update *EventUpdate) (*Event, error)
	Delete(ctx context.Context, eventID, requesterID, requesterRole string) error
	// Rate records the user's 1..5 rating and returns the event with
	// refreshed aggregates. Organizers cannot rate their own event.
	Rate(ctx context.Context, eventID, userID string, rating int) (*Event, error)
}
