package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewDB opens a Postgres connection pool and verifies it is reachable
func NewDB(dsn string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS agencies (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	state       TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT '',
	population  BIGINT CHECK (population >= 0),
	website     TEXT
);

CREATE INDEX IF NOT EXISTS agencies_name_idx ON agencies (name);

CREATE TABLE IF NOT EXISTS contacts (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	department  TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	agency_id   TEXT REFERENCES agencies (id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS contacts_last_name_idx ON contacts (last_name);
CREATE INDEX IF NOT EXISTS contacts_agency_id_idx ON contacts (agency_id);

CREATE TABLE IF NOT EXISTS user_usage (
	user_id         TEXT PRIMARY KEY,
	count           INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
	last_viewed_at  TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the tables the application needs if they do not exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
