package lab

import (
	"context"

	"Thermolab/internal/domain"
	"Thermolab/internal/experiments"
	"Thermolab/internal/repo"
)

// CatalogExperiments serves the embedded catalog when there is no database.
type CatalogExperiments struct {
	*experiments.Catalog
}

func (c CatalogExperiments) List(context.Context) ([]domain.Experiment, error) {
	return c.All(), nil
}

func (c CatalogExperiments) GetBySlug(_ context.Context, slug string) (domain.Experiment, error) {
	e, ok := c.Get(slug)
	if !ok {
		return domain.Experiment{}, repo.ErrNotFound
	}
	return e, nil
}
