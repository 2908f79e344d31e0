package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventticketing/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
	publisher        domain.NotificationPublisher
	logger           *slog.Logger
}

// NewNotificationService creates a NotificationService that persists
// notifications and pushes them to the recipient's realtime channel.
func NewNotificationService(
	notificationRepo domain.NotificationRepository,
	publisher domain.NotificationPublisher,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// The stored record is the source of truth; the push is best-effort.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.logger.Error("publish notification", "notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
		}
	}
	return nil
}

func (s *notificationService) ListMine(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	notifications, total, err := s.notificationRepo.ListByRecipientID(ctx, recipientID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, requesterID string) error {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}
	if n.RecipientID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
