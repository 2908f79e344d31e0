package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// Open connects to PostgreSQL and verifies the connection.
func Open(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent; Migrate runs at startup before the server accepts requests.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			organizer_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT 'Other',
			is_online BOOLEAN NOT NULL DEFAULT FALSE,
			meeting_link TEXT,
			location TEXT,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ,
			cover_image_url TEXT,
			cover_image_file_id TEXT,
			capacity INTEGER,
			available_seats INTEGER,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT events_seats_within_capacity CHECK (
				capacity IS NULL OR
				(available_seats >= 0 AND available_seats <= capacity)
			)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			seats INTEGER NOT NULL CHECK (seats >= 1),
			total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'confirmed',
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS bookings_event_idx ON bookings (event_id)`,
		`CREATE INDEX IF NOT EXISTS bookings_user_event_idx ON bookings (user_id, event_id)`,
		`CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status)`,
		`CREATE TABLE IF NOT EXISTS user_booked_events (
			user_id UUID NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, event_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			recipient_id UUID NOT NULL REFERENCES users(id),
			sender_id UUID REFERENCES users(id),
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			related_entity_id UUID,
			related_entity_type TEXT,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, event_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL REFERENCES users(id),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_event_idx ON comments (event_id, created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
