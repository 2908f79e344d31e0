package domain

import (
	"context"
	"time"
)

// Comment is a user's public comment on an event page.
// swagger:model Comment
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentRepository defines storage for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Comment, int, error)
	Delete(ctx context.Context, id string) error
}

// CommentService defines event comment operations.
type CommentService interface {
	Create(ctx context.Context, eventID, userID, body string) (*Comment, error)
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*Comment, int, error)
	// Delete allows the comment's author, the event's organizer, or an admin.
	Delete(ctx context.Context, commentID, requesterID, requesterRole string) error
}
