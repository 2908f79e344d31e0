package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventticketing/internal/domain"
)

const bookingColumns = `id, user_id, event_id, seats, total_price, status, name, email, phone,
		created_at, updated_at`

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

// CreateWithReservation performs the check-and-reserve as one transaction.
//
// The event row is locked with SELECT ... FOR UPDATE, so two requests racing
// for the last seat serialize here: the second waits for the first commit and
// then sees the decremented counter. A plain read-then-write would let both
// pass the capacity check and overbook.
func (r *bookingRepository) CreateWithReservation(ctx context.Context, b *domain.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity, availableSeats sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, available_seats
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		b.EventID,
	).Scan(&capacity, &availableSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return err
	}

	// One active booking per (user, event).
	var activeCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE user_id = $1 AND event_id = $2 AND status IN ($3, $4)`,
		b.UserID, b.EventID, domain.BookingStatusPending, domain.BookingStatusConfirmed,
	).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("check active booking: %w", err)
	}
	if activeCount > 0 {
		err = domain.ErrAlreadyBooked
		return err
	}

	// NULL capacity means unlimited; nothing to decrement.
	if capacity.Valid {
		if !availableSeats.Valid || availableSeats.Int64 < int64(b.Seats) {
			err = domain.ErrCapacityExceeded
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET available_seats = available_seats - $2 WHERE id = $1`,
			b.EventID, b.Seats,
		)
		if err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (user_id, event_id, seats, total_price, status, name, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		b.UserID, b.EventID, b.Seats, b.TotalPrice, b.Status,
		b.Name, b.Email, b.Phone, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b := &domain.Booking{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.EventID, &b.Seats, &b.TotalPrice, &b.Status,
		&b.Name, &b.Email, &b.Phone, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) ListPendingByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.Booking, error) {
	if len(eventIDs) == 0 {
		return []*domain.Booking{}, nil
	}
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND event_id = ANY($2)
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, domain.BookingStatusPending, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// DeleteWithRelease removes the booking and returns its seats to the event
// when the booking was still holding them.
func (r *bookingRepository) DeleteWithRelease(ctx context.Context, b *domain.Booking, releaseSeats bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, b.ID)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrNotFound
		return err
	}

	if releaseSeats {
		if err = releaseEventSeats(ctx, tx, b.EventID, b.Seats); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TransitionStatus moves the booking between states. The WHERE status guard
// makes the transition a compare-and-swap: a concurrent or repeated
// approve/reject finds zero rows and reports ErrInvalidTransition.
func (r *bookingRepository) TransitionStatus(ctx context.Context, b *domain.Booking, fromStatus, toStatus string, releaseSeats bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		b.ID, fromStatus, toStatus,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrInvalidTransition
		return err
	}

	if releaseSeats {
		if err = releaseEventSeats(ctx, tx, b.EventID, b.Seats); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	b.Status = toStatus
	return nil
}

// releaseEventSeats returns seats to the event's available pool, clamped to
// capacity. Events with NULL capacity have nothing to release.
func releaseEventSeats(ctx context.Context, tx *sql.Tx, eventID string, seats int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE events
		 SET available_seats = LEAST(capacity, available_seats + $2)
		 WHERE id = $1 AND capacity IS NOT NULL`,
		eventID, seats,
	)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}

func collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventID, &b.Seats, &b.TotalPrice, &b.Status,
			&b.Name, &b.Email, &b.Phone, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}
