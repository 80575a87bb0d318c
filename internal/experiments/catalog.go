// Package experiments holds the built-in experiment catalog. It seeds the
// database and serves constants when the service runs without one.
package experiments

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	loadOnce sync.Once
	builtin  *Catalog
	loadErr  error
)

// Catalog is an in-memory, read-only set of experiments.
type Catalog struct {
	list   []domain.Experiment
	bySlug map[string]int
}

// Builtin returns the embedded catalog. It is parsed once.
func Builtin() (*Catalog, error) {
	loadOnce.Do(func() {
		builtin, loadErr = Parse(catalogYAML)
	})
	return builtin, loadErr
}

// Parse decodes a YAML list of experiments.
func Parse(data []byte) (*Catalog, error) {
	var list []domain.Experiment
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("experiments: decode catalog: %w", err)
	}
	c := &Catalog{list: list, bySlug: make(map[string]int, len(list))}
	for i, e := range list {
		if e.Slug == "" {
			return nil, fmt.Errorf("experiments: entry %d has no slug", i)
		}
		if _, dup := c.bySlug[e.Slug]; dup {
			return nil, fmt.Errorf("experiments: duplicate slug %q", e.Slug)
		}
		c.list[i].ID = i + 1
		c.bySlug[e.Slug] = i
	}
	return c, nil
}

// All returns the experiments in catalog order.
func (c *Catalog) All() []domain.Experiment {
	out := make([]domain.Experiment, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Catalog) Get(slug string) (domain.Experiment, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Experiment{}, false
	}
	return c.list[i], true
}

// Constants implements engine.ConstantsSource.
func (c *Catalog) Constants(_ context.Context, slug string) (domain.Constants, error) {
	e, ok := c.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrConstantsNotFound, slug)
	}
	return e.Content.Constants, nil
}
