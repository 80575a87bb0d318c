package experiments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/calc/numparse"
	"Thermolab/internal/domain"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, domain.SlugThermalConductivity, all[0].Slug)
	assert.Equal(t, domain.SlugNaturalConvection, all[1].Slug)
	assert.Equal(t, 1, all[0].ID)

	rod, ok := c.Get(domain.SlugThermalConductivity)
	require.True(t, ok)
	assert.Len(t, rod.Content.Inputs, 14)
	assert.Len(t, rod.Content.Constants, 11)
	assert.Equal(t, 0.3005, numparse.Parse(rod.Content.Constants["kins"].Value))
	assert.Equal(t, "Diameter of Jacket", rod.Content.Constants["d_jack"].Description)
	assert.Len(t, rod.Content.Viva, 3)

	tube, ok := c.Get(domain.SlugNaturalConvection)
	require.True(t, ok)
	var mode domain.InputSpec
	for _, in := range tube.Content.Inputs {
		if in.Name == "air_props_mode" {
			mode = in
		}
	}
	require.Len(t, mode.Options, 2)
	assert.True(t, mode.Options[0].Selected)
	require.NotNil(t, mode.Required)
	assert.False(t, *mode.Required)
}

func TestCatalogConstants(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	consts, err := c.Constants(context.Background(), domain.SlugNaturalConvection)
	require.NoError(t, err)
	assert.Equal(t, 9.81, numparse.Parse(consts["g"].Value))

	_, err = c.Constants(context.Background(), "no-such-experiment")
	assert.ErrorIs(t, err, engine.ErrConstantsNotFound)
}

func TestAllReturnsCopy(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	all := c.All()
	all[0].Title = "changed"
	e, _ := c.Get(all[0].Slug)
	assert.NotEqual(t, "changed", e.Title)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("- title: no slug"))
	assert.Error(t, err)

	_, err = Parse([]byte("- slug: a\n- slug: a"))
	assert.ErrorContains(t, err, "duplicate slug")

	_, err = Parse([]byte("{not a list"))
	assert.Error(t, err)
}

func TestCatalogDrivesEngine(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	res, err := engine.New(c).Calculate(context.Background(), domain.SlugThermalConductivity, domain.RawInputs{
		"flow_rate_value": 0.15, "t_wi": 20, "t_wo": 21,
		"t1": 80, "t2": 75, "t3": 70, "t4": 65, "t5": 60,
	})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, 0.035, numparse.Parse(res.Constants["d_rod"].Value))
}
