// Package repo stores experiments, student runs and instructor accounts in
// Postgres.
package repo

import (
	"context"
	"errors"

	"Thermolab/internal/domain"
)

var (
	ErrNotFound  = errors.New("repo: not found")
	ErrDuplicate = errors.New("repo: already exists")
)

type ExperimentRepository interface {
	List(ctx context.Context) ([]domain.Experiment, error)
	GetBySlug(ctx context.Context, slug string) (domain.Experiment, error)
	GetByID(ctx context.Context, id int) (domain.Experiment, error)
	Create(ctx context.Context, e domain.Experiment) (int, error)
	Update(ctx context.Context, e domain.Experiment) error
	Count(ctx context.Context) (int, error)
}

type RunRepository interface {
	SaveRun(ctx context.Context, run domain.Run) (int, error)
	CountRuns(ctx context.Context) (int, error)
	ListRuns(ctx context.Context, slug string, limit int) ([]domain.Run, error)
}

// UserRepository holds instructor accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
}

// Seed inserts every experiment whose slug is not stored yet and returns how
// many were added.
func Seed(ctx context.Context, r ExperimentRepository, list []domain.Experiment) (int, error) {
	added := 0
	for _, e := range list {
		_, err := r.GetBySlug(ctx, e.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return added, err
		}
		if _, err := r.Create(ctx, e); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
