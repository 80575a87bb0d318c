package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
)

type PostgresExperimentRepository struct {
	db *sql.DB
}

func NewPostgresExperimentDB(db *sql.DB) *PostgresExperimentRepository {
	return &PostgresExperimentRepository{db: db}
}

func (r *PostgresExperimentRepository) List(ctx context.Context) ([]domain.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, slug, title, content FROM experiments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("repo: list experiments: %w", err)
	}
	defer rows.Close()

	var out []domain.Experiment
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresExperimentRepository) GetBySlug(ctx context.Context, slug string) (domain.Experiment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, slug, title, content FROM experiments WHERE slug=$1", slug)
	return one(row)
}

func (r *PostgresExperimentRepository) GetByID(ctx context.Context, id int) (domain.Experiment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, slug, title, content FROM experiments WHERE id=$1", id)
	return one(row)
}

func (r *PostgresExperimentRepository) Create(ctx context.Context, e domain.Experiment) (int, error) {
	content, err := json.Marshal(e.Content)
	if err != nil {
		return 0, fmt.Errorf("repo: encode content: %w", err)
	}
	var id int
	query := "INSERT INTO experiments (slug, title, content) VALUES ($1, $2, $3) RETURNING id"
	err = r.db.QueryRowContext(ctx, query, e.Slug, e.Title, content).Scan(&id)
	if err != nil {
		return 0, writeErr("create experiment", err)
	}
	return id, nil
}

func (r *PostgresExperimentRepository) Update(ctx context.Context, e domain.Experiment) error {
	content, err := json.Marshal(e.Content)
	if err != nil {
		return fmt.Errorf("repo: encode content: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE experiments SET slug=$1, title=$2, content=$3 WHERE id=$4",
		e.Slug, e.Title, content, e.ID)
	if err != nil {
		return writeErr("update experiment", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo: update experiment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresExperimentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM experiments").Scan(&n); err != nil {
		return 0, fmt.Errorf("repo: count experiments: %w", err)
	}
	return n, nil
}

// Constants implements engine.ConstantsSource.
func (r *PostgresExperimentRepository) Constants(ctx context.Context, slug string) (domain.Constants, error) {
	e, err := r.GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", engine.ErrConstantsNotFound, slug)
	}
	if err != nil {
		return nil, err
	}
	return e.Content.Constants, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(s scanner) (domain.Experiment, error) {
	var e domain.Experiment
	var content []byte
	if err := s.Scan(&e.ID, &e.Slug, &e.Title, &content); err != nil {
		return e, err
	}
	if err := json.Unmarshal(content, &e.Content); err != nil {
		return e, fmt.Errorf("repo: decode content of %s: %w", e.Slug, err)
	}
	return e, nil
}

func one(row *sql.Row) (domain.Experiment, error) {
	e, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experiment{}, ErrNotFound
	}
	if err != nil {
		return domain.Experiment{}, fmt.Errorf("repo: get experiment: %w", err)
	}
	return e, nil
}

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func writeErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return fmt.Errorf("repo: %s: %w", op, err)
}
