package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventticketing/internal/domain"
)

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{
		DB: db,
	}
}

// Upsert writes the user's rating and refreshes the event's aggregates in
// the same transaction, so readers never see a stale average with a fresh
// count or vice versa.
func (r *reviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO reviews (user_id, event_id, rating, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, event_id)
		 DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		review.UserID, review.EventID, review.Rating, review.CreatedAt, review.UpdatedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE events
		 SET average_rating = agg.avg_rating, rating_count = agg.cnt
		 FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS cnt
			FROM reviews WHERE event_id = $1
		 ) AS agg
		 WHERE id = $1`,
		review.EventID,
	)
	if err != nil {
		return fmt.Errorf("refresh rating aggregates: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Review, error) {
	query := `
		SELECT id, user_id, event_id, rating, created_at, updated_at
		FROM reviews
		WHERE event_id = $1 AND user_id = $2
	`
	review := &domain.Review{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(
		&review.ID, &review.UserID, &review.EventID, &review.Rating,
		&review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return review, nil
}
