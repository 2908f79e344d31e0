package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventticketing/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, message, related_entity_id, related_entity_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		n.RecipientID, nullString(n.SenderID), n.Type, n.Message,
		nullString(n.RelatedEntityID), nullString(n.RelatedEntityType), n.CreatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, sender_id, type, message, related_entity_id, related_entity_type, is_read, created_at
		FROM notifications
		WHERE id = $1
	`
	n := &domain.Notification{}
	var senderID, relatedID, relatedType sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.RecipientID, &senderID, &n.Type, &n.Message,
		&relatedID, &relatedType, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	n.SenderID = senderID.String
	n.RelatedEntityID = relatedID.String
	n.RelatedEntityType = relatedType.String
	return n, nil
}

func (r *notificationRepository) ListByRecipientID(ctx context.Context, recipientID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, recipientID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, recipient_id, sender_id, type, message, related_entity_id, related_entity_type, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, recipientID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var senderID, relatedID, relatedType sql.NullString
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &senderID, &n.Type, &n.Message,
			&relatedID, &relatedType, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		n.SenderID = senderID.String
		n.RelatedEntityID = relatedID.String
		n.RelatedEntityType = relatedType.String
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
