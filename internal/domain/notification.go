package domain

import (
	"context"
	"time"
)

// Notification types pushed to users.
const (
	NotificationTypeReservation  = "RESERVATION"
	NotificationTypeCancellation = "CANCELLATION"
)

// Related entity kinds for notifications.
const (
	RelatedEntityEvent = "Event"
	RelatedEntityUser  = "User"
)

// Notification is a stored message for a user about a state change.
// swagger:model Notification
type Notification struct {
	ID                string    `json:"id"`
	RecipientID       string    `json:"recipient_id"`
	SenderID          string    `json:"sender_id,omitempty"`
	Type              string    `json:"type"`
	Message           string    `json:"message"`
	RelatedEntityID   string    `json:"related_entity_id,omitempty"`
	RelatedEntityType string    `json:"related_entity_type,omitempty"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}

// NotificationRepository defines storage for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationPublisher pushes a stored notification to any connected
// session of its recipient. Implementations are best-effort; the caller
// never depends on delivery succeeding.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// Notifier is the side channel the booking workflow uses to inform a user
// of a state change. It persists the record and pushes it to the recipient.
// Callers treat it as fire-and-forget: an error is logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// NotificationService is the user-facing notification surface plus the
// Notifier consumed by the booking workflow.
type NotificationService interface {
	Notifier
	ListMine(ctx context.Context, recipientID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, notificationID, requesterID string) error
}
