package tracefmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/conduction"
	"Thermolab/internal/calc/convection"
	"Thermolab/internal/domain"
)

func TestConductionSteps(t *testing.T) {
	out := conduction.Calculate(domain.Constants{
		"d_rod": {Value: 35, Unit: "mm"},
		"cpw":   {Value: 4180},
		"rho":   {Value: 1000},
	}, domain.RawInputs{
		"flow_rate_value": 0.15, "flow_rate_unit": "L/min", "t_wi": 20, "t_wo": 21,
		"t1": 80, "t2": 75, "t3": 70, "t4": 65, "t5": 60,
	})
	steps := Conduction(out)
	require.Len(t, steps, 8)
	for i, s := range steps {
		assert.Equal(t, i+1, s.N)
		assert.NotEmpty(t, s.Lines)
	}

	assert.Equal(t, "Flow conversion", steps[0].Title)
	assert.Equal(t, "Vdot = 0.150 L/min -> 2.500e-06 m^3/s", steps[0].Lines[0])
	assert.Equal(t, "Qw = m_dot Cp (T_wo - T_wi) = 0.002 x 4180 x (21.000 - 20.000) = 10.450 W", steps[1].Lines[0])
	assert.Equal(t, "A = pi d^2 / 4 = pi (0.035)^2 / 4 = 9.621e-04 m^2", steps[2].Lines[0])
	assert.Len(t, steps[3].Lines, 3)
	assert.Equal(t, "(dT/dx)_xx = (80.000 - 70.000) / (2 x 0.060) = 83.333 K/m", steps[3].Lines[0])
	assert.Len(t, steps[4].Lines, 2)
	assert.True(t, strings.HasPrefix(steps[5].Lines[0], "Q_yy = Q_xx + 2 pi L2 k_ins (T8 - T9)"))
	assert.True(t, strings.HasPrefix(steps[7].String(), "8. Average conductivity: K_avg ="))
}

func TestConductionStepsNeedTrace(t *testing.T) {
	assert.Nil(t, Conduction(conduction.Output{}))
}

func TestConvectionStepsPerTrial(t *testing.T) {
	out, err := convection.Calculate(nil, domain.RawInputs{"observations": []any{
		map[string]any{"v": 80, "i": 1.5, "t1": 70, "t2": 68, "t3": 66, "t4": 64, "t5": 62, "t6": 60, "t7": 30},
		map[string]any{"v": 75, "i": 1.4, "t1": 65},
	}})
	require.NoError(t, err)

	all := Convection(out.Results)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Trial)
	require.Len(t, all[0].Steps, 10)
	assert.Equal(t, "Q = V x I = 120.000 W", all[0].Steps[0].Lines[0])
	assert.Equal(t, "Ts = (T1 + ... + T6) / 6 = 65.000 C", all[0].Steps[1].Lines[0])
	assert.Contains(t, all[0].Steps[7].Lines[0], "C=0.13, n=0.333, range 1e8-1e12")

	missing := all[1].Steps
	require.Len(t, missing, 10)
	assert.Equal(t, "dT = Ts - Ta = - K", missing[2].Lines[0])
	assert.Contains(t, missing[7].Lines[0], "C=-, n=-")
	assert.Equal(t, "10. h from power balance: h = Q / (A_s dT) = - W/m^2K", missing[9].String())
}

func TestLines(t *testing.T) {
	got := Lines([]Step{{N: 1, Title: "A", Lines: []string{"x = 1", "y = 2"}}})
	assert.Equal(t, []string{"1. A: x = 1; y = 2"}, got)
}
