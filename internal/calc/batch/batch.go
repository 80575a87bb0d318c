// Package batch evaluates several submissions in one call, for instructors
// checking a whole class's readings.
package batch

import (
	"context"
	"errors"
	"fmt"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
)

// MaxItems bounds one batch.
const MaxItems = 200

var (
	ErrNoItems  = errors.New("batch: no items")
	ErrTooLarge = fmt.Errorf("batch: more than %d items", MaxItems)
)

type Calculator interface {
	Calculate(ctx context.Context, slug string, raw domain.RawInputs) (engine.Result, error)
}

type Item struct {
	Slug   string           `json:"slug" validate:"required"`
	Label  string           `json:"label,omitempty"`
	Inputs domain.RawInputs `json:"inputs"`
}

type Input struct {
	Items []Item `json:"items" validate:"dive"`
}

type ItemResult struct {
	Index int    `json:"index"`
	Label string `json:"label,omitempty"`
	engine.Result
}

type Result struct {
	Results []ItemResult `json:"results"`
	Failed  int          `json:"failed"`
}

// Calculate runs every item in order. A failed item keeps its error in the
// envelope and does not stop the batch; only context cancellation does.
func Calculate(ctx context.Context, calc Calculator, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, ErrNoItems
	}
	if len(in.Items) > MaxItems {
		return Result{}, ErrTooLarge
	}
	out := Result{Results: make([]ItemResult, 0, len(in.Items))}
	for i, item := range in.Items {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, err := calc.Calculate(ctx, item.Slug, item.Inputs)
		if err != nil {
			if !res.Failed() {
				res = engine.Result{Slug: item.Slug, Error: err.Error()}
			}
			out.Failed++
		}
		out.Results = append(out.Results, ItemResult{Index: i, Label: item.Label, Result: res})
	}
	return out, nil
}
