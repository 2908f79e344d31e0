package domain

import (
	"context"
	"time"
)

// Review is a user's 1..5 rating of an event. One review per (user, event);
// re-rating replaces the previous value.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewRepository defines storage for reviews. Upsert maintains the
// event's average_rating and rating_count in the same transaction.
type ReviewRepository interface {
	Upsert(ctx context.Context, review *Review) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Review, error)
}
