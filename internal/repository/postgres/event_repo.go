package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventticketing/internal/domain"
)

const eventColumns = `id, organizer_id, title, description, category, is_online, meeting_link,
		location, starts_at, ends_at, cover_image_url, cover_image_file_id,
		capacity, available_seats, is_paid, price, average_rating, rating_count,
		created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, description, category, is_online, meeting_link,
			location, starts_at, ends_at, cover_image_url, cover_image_file_id,
			capacity, available_seats, is_paid, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.Title, nullString(e.Description), e.Category, e.IsOnline,
		nullString(e.MeetingLink), nullString(e.Location), e.StartsAt, nullTime(e.EndsAt),
		nullString(e.CoverImageURL), nullString(e.CoverImageFileID),
		nullInt(e.Capacity), nullInt(e.AvailableSeats), e.IsPaid, e.Price,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, category = $4, is_online = $5, meeting_link = $6,
			location = $7, starts_at = $8, ends_at = $9, cover_image_url = $10,
			cover_image_file_id = $11, capacity = $12, available_seats = $13,
			is_paid = $14, price = $15, updated_at = $16
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, nullString(e.Description), e.Category, e.IsOnline,
		nullString(e.MeetingLink), nullString(e.Location), e.StartsAt, nullTime(e.EndsAt),
		nullString(e.CoverImageURL), nullString(e.CoverImageFileID),
		nullInt(e.Capacity), nullInt(e.AvailableSeats), e.IsPaid, e.Price, e.UpdatedAt,
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

// Delete removes the event inside a transaction. Bookings, reviews, and
// comments cascade via foreign keys; the confirmed-events back-references
// cascade as well.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrNotFound
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		desc, meetingLink, location, coverURL, coverFileID sql.NullString
		endsAt                                             sql.NullTime
		capacity, availableSeats                           sql.NullInt64
	)
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &desc, &e.Category, &e.IsOnline, &meetingLink,
		&location, &e.StartsAt, &endsAt, &coverURL, &coverFileID,
		&capacity, &availableSeats, &e.IsPaid, &e.Price, &e.AverageRating, &e.RatingCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = desc.String
	e.MeetingLink = meetingLink.String
	e.Location = location.String
	e.CoverImageURL = coverURL.String
	e.CoverImageFileID = coverFileID.String
	if endsAt.Valid {
		e.EndsAt = &endsAt.Time
	}
	if capacity.Valid {
		v := int(capacity.Int64)
		e.Capacity = &v
	}
	if availableSeats.Valid {
		v := int(availableSeats.Int64)
		e.AvailableSeats = &v
	}
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
