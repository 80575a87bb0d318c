package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"Thermolab/internal/config"
)

// Open connects to Postgres and checks the connection. A URL without an
// sslmode gets sslmode=require.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", withSSLMode(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("repo: open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo: ping database: %w", err)
	}
	return db, nil
}

func withSSLMode(connStr string) string {
	if strings.Contains(connStr, "sslmode=") {
		return connStr
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if strings.Contains(connStr, "?") {
			return connStr + "&sslmode=require"
		}
		return connStr + "?sslmode=require"
	}
	return connStr + " sslmode=require"
}

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id      SERIAL PRIMARY KEY,
	slug    VARCHAR(64) UNIQUE NOT NULL,
	title   VARCHAR(128) NOT NULL,
	content JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS student_runs (
	id            SERIAL PRIMARY KEY,
	experiment_id INTEGER NOT NULL REFERENCES experiments(id),
	student_name  VARCHAR(64) NOT NULL,
	usn           VARCHAR(32) NOT NULL,
	date          TIMESTAMP NOT NULL DEFAULT NOW(),
	inputs        JSONB NOT NULL,
	results       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS student_runs_experiment_idx ON student_runs (experiment_id);
CREATE TABLE IF NOT EXISTS instructors (
	id       SERIAL PRIMARY KEY,
	login    VARCHAR(64) UNIQUE NOT NULL,
	email    VARCHAR(128) NOT NULL,
	password TEXT NOT NULL
);`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repo: migrate: %w", err)
	}
	return nil
}
