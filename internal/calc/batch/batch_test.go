package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
)

type evaluator struct{}

func (evaluator) Calculate(_ context.Context, slug string, raw domain.RawInputs) (engine.Result, error) {
	return engine.Evaluate(slug, domain.Constants{}, raw)
}

func TestCalculateKeepsGoingAfterFailure(t *testing.T) {
	res, err := Calculate(context.Background(), evaluator{}, Input{Items: []Item{
		{Slug: domain.SlugThermalConductivity, Label: "bench 1", Inputs: domain.RawInputs{"t_wi": 20, "t_wo": 21, "flow_rate_value": 0.15}},
		{Slug: "pin-fin"},
		{Slug: domain.SlugNaturalConvection, Inputs: domain.RawInputs{"v": 100, "i": 0.5}},
	}})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, 1, res.Failed)

	assert.Equal(t, "bench 1", res.Results[0].Label)
	assert.False(t, res.Results[0].Failed())
	assert.Equal(t, 1, res.Results[1].Index)
	assert.Equal(t, "Unknown experiment", res.Results[1].Error)
	assert.False(t, res.Results[2].Failed())
}

func TestCalculateLimits(t *testing.T) {
	_, err := Calculate(context.Background(), evaluator{}, Input{})
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = Calculate(context.Background(), evaluator{}, Input{Items: make([]Item, MaxItems+1)})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestCalculateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Calculate(ctx, evaluator{}, Input{Items: []Item{{Slug: domain.SlugThermalConductivity}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandler(t *testing.T) {
	h := &Handler{Svc: evaluator{}}

	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/batch",
		strings.NewReader(`{"items":[{"slug":"therm-conductivity-metal-rod","inputs":{"t_wi":20}}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed":0`)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/batch", strings.NewReader(`{"items":[{"inputs":{}}]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/batch", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
