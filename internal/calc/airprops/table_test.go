package airprops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolateBreakpoint(t *testing.T) {
	assert.Equal(t, 1.177, Interpolate(300, Density))
	assert.Equal(t, 0.0339, Interpolate(400, ThermalConductivity))
	assert.Equal(t, 1.394, Interpolate(250, Density))
}

func TestInterpolateBetween(t *testing.T) {
	got := Interpolate(275, Density)
	assert.Greater(t, got, 1.177)
	assert.Less(t, got, 1.394)
	assert.InDelta(t, (1.394+1.177)/2, got, 1e-12)
}

func TestInterpolateClamps(t *testing.T) {
	props := []Property{Density, SpecificHeat, ThermalConductivity, DynamicViscosity, Prandtl}
	for _, p := range props {
		assert.Equal(t, Interpolate(250, p), Interpolate(100, p), p)
		assert.Equal(t, Interpolate(500, p), Interpolate(1000, p), p)
	}
}

func TestInterpolateUnknownProperty(t *testing.T) {
	assert.Zero(t, Interpolate(300, Property("enthalpy")))
}

func TestAt(t *testing.T) {
	p := At(300)
	assert.Greater(t, p.Rho, 1.0)
	assert.Greater(t, p.K, 0.02)
	assert.Greater(t, p.Mu, 1e-5)
	assert.Greater(t, p.Pr, 0.6)
	assert.InDelta(t, p.Mu/p.Rho, p.Nu, 1e-18)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(250))
	assert.True(t, InRange(500))
	assert.False(t, InRange(249.9))
	assert.False(t, InRange(500.1))
	assert.Zero(t, KinematicViscosity(1.8e-5, 0))
}
