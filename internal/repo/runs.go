package repo

import (
	"context"
	"database/sql"
	"fmt"

	"Thermolab/internal/domain"
)

type PostgresRunRepository struct {
	db *sql.DB
}

func NewPostgresRunDB(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

func (r *PostgresRunRepository) SaveRun(ctx context.Context, run domain.Run) (int, error) {
	var id int
	query := `INSERT INTO student_runs (experiment_id, student_name, usn, date, inputs, results)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		run.ExperimentID, run.StudentName, run.USN, run.Date, []byte(run.Inputs), []byte(run.Results),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repo: save run: %w", err)
	}
	return id, nil
}

func (r *PostgresRunRepository) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM student_runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("repo: count runs: %w", err)
	}
	return n, nil
}

// ListRuns returns the newest runs first. An empty slug lists every
// experiment; limit <= 0 means 50.
func (r *PostgresRunRepository) ListRuns(ctx context.Context, slug string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT r.id, r.experiment_id, e.slug, r.student_name, r.usn, r.date, r.inputs, r.results
		FROM student_runs r JOIN experiments e ON e.id = r.experiment_id
		WHERE $1 = '' OR e.slug = $1
		ORDER BY r.date DESC, r.id DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: list runs: %w", err)
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var run domain.Run
		var inputs, results []byte
		if err := rows.Scan(&run.ID, &run.ExperimentID, &run.Slug, &run.StudentName, &run.USN, &run.Date, &inputs, &results); err != nil {
			return nil, fmt.Errorf("repo: scan run: %w", err)
		}
		run.Inputs, run.Results = inputs, results
		out = append(out, run)
	}
	return out, rows.Err()
}
