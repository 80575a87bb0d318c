package conduction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/domain"
)

func rodConstants() domain.Constants {
	return domain.Constants{
		"d_rod": {Value: 0.035, Unit: "m"},
		"kins":  {Value: 0.3005, Unit: "W/mK"},
		"l1":    {Value: 0.025, Unit: "m"},
		"l2":    {Value: 0.12, Unit: "m"},
		"l3":    {Value: 0.12, Unit: "m"},
		"ri":    {Value: 0.0425, Unit: "m"},
		"ro":    {Value: 0.055, Unit: "m"},
		"cpw":   {Value: 4178, Unit: "J/kgK"},
		"rho":   {Value: 1000, Unit: "kg/m^3"},
		"dx":    {Value: 0.06, Unit: "m"},
	}
}

func steadyReadings() domain.RawInputs {
	return domain.RawInputs{
		"flow_rate_value": "0.15",
		"flow_rate_unit":  "L/min",
		"t_wi":            20,
		"t_wo":            21,
		"t1":              80, "t2": 75, "t3": 70, "t4": 65, "t5": 60,
		"t12": 40, "t13": 30,
		"t8": 41, "t9": 31,
		"t6": 42, "t7": 32,
	}
}

func TestWaterHeatGain(t *testing.T) {
	consts := rodConstants()
	consts["cpw"] = domain.Constant{Value: 4180, Unit: "J/kgK"}
	out := Calculate(consts, domain.RawInputs{
		"flow_rate_value": 0.15, "flow_rate_unit": "L/min", "t_wi": 20, "t_wo": 21,
	})
	assert.InDelta(t, 10.45, out.Trace.Qw, 0.2)
	assert.InDelta(t, 9.62e-4, out.Trace.Area, 1e-6)
}

func TestSectionsAccumulateFromWaterEnd(t *testing.T) {
	out := Calculate(rodConstants(), steadyReadings())
	tr := out.Trace

	lnRatio := math.Log(0.055 / 0.0425)
	radFactor := 2 * math.Pi * 0.3005 / lnRatio
	assert.InDelta(t, lnRatio, tr.LnRoRi, 1e-12)
	assert.InDelta(t, radFactor, tr.RadFactor, 1e-9)

	assert.InDelta(t, radFactor*0.025*10, tr.LossXX, 1e-9)
	assert.InDelta(t, radFactor*0.12*10, tr.LossYY, 1e-9)
	assert.InDelta(t, radFactor*0.12*10, tr.LossZZ, 1e-9)

	assert.InDelta(t, tr.Qw+tr.LossXX, tr.Qs[0], 1e-9)
	assert.InDelta(t, tr.Qs[0]+tr.LossYY, tr.Qs[1], 1e-9)
	assert.InDelta(t, tr.Qs[1]+tr.LossZZ, tr.Qs[2], 1e-9)

	grad := 10 / (2 * 0.06)
	for i := range tr.Grads {
		assert.InDelta(t, grad, tr.Grads[i], 1e-9)
		assert.InDelta(t, tr.Qs[i]/(tr.Area*grad), tr.Ks[i], 1e-9)
	}
	assert.InDelta(t, (tr.Ks[0]+tr.Ks[1]+tr.Ks[2])/3, tr.KAvg, 1e-9)
	assert.Greater(t, tr.KAvg, MinPlausibleK)
	assert.Less(t, tr.KAvg, MaxPlausibleK)

	require.Len(t, tr.Sections, 3)
	assert.Equal(t, []string{"XX", "YY", "ZZ"}, []string{tr.Sections[0].Name, tr.Sections[1].Name, tr.Sections[2].Name})
	assert.Empty(t, out.Warnings)
	assert.Equal(t, out.Trace.KAvg, out.Results.KAvg)
}

func TestZeroGradientsGiveZeroConductivity(t *testing.T) {
	raw := steadyReadings()
	for _, k := range []string{"t1", "t2", "t3", "t4", "t5"} {
		raw[k] = 50
	}
	out := Calculate(rodConstants(), raw)
	assert.Equal(t, [3]float64{0, 0, 0}, out.Trace.Grads)
	assert.Equal(t, [3]float64{0, 0, 0}, out.Trace.Ks)
	assert.Zero(t, out.Trace.KAvg)
}

func TestZeroSpacingIsGuarded(t *testing.T) {
	consts := rodConstants()
	consts["dx"] = domain.Constant{Value: 0, Unit: "m"}
	out := Calculate(consts, steadyReadings())
	assert.Equal(t, [3]float64{0, 0, 0}, out.Trace.Grads)
	assert.Contains(t, out.Warnings, "dx is zero; gradients are set to 0.")
	assert.Contains(t, out.Suspects, "dx_unit")
}

func TestInvalidRadiiDisableRadialLoss(t *testing.T) {
	consts := rodConstants()
	consts["ri"] = domain.Constant{Value: 0, Unit: "m"}
	out := Calculate(consts, steadyReadings())
	assert.Zero(t, out.Trace.LnRoRi)
	assert.Zero(t, out.Trace.RadFactor)
	assert.Equal(t, out.Trace.Qw, out.Trace.Qs[2])
}

func TestTinyWaterGainFlagsFlowUnit(t *testing.T) {
	raw := steadyReadings()
	raw["cpw"] = 1
	out := Calculate(rodConstants(), raw)
	assert.Contains(t, out.Suspects, "flow_rate_unit")
	assert.Contains(t, out.Warnings, "Qw is very low for the given flow and deltaT. Check flow units and conversion.")
}

func TestImplausibleConductivityBlamesGeometry(t *testing.T) {
	raw := steadyReadings()
	raw["flow_rate_value"] = 0.001
	for _, k := range []string{"t6", "t7", "t8", "t9", "t12", "t13"} {
		raw[k] = 0
	}
	out := Calculate(rodConstants(), raw)
	require.Less(t, out.Trace.KAvg, MinPlausibleK)
	assert.Greater(t, out.Trace.KAvg, 0.0)

	for _, f := range []string{"flow_rate_unit", "rod_diameter_unit", "l1_unit", "l2_unit", "l3_unit", "ri_unit", "ro_unit"} {
		assert.Contains(t, out.Suspects, f)
	}
	last := out.Warnings[len(out.Warnings)-1]
	assert.Contains(t, last, "Likely unit error: K_avg =")
	assert.Contains(t, last, "flow_rate_unit, l1_unit")
}

func TestImplausibleConductivityKeepsSpecificSuspects(t *testing.T) {
	raw := steadyReadings()
	raw["d_rod"] = 35
	raw["rod_diameter_unit"] = "m"
	out := Calculate(rodConstants(), raw)
	assert.Equal(t, []string{"rod_diameter_unit"}, out.Suspects)
	last := out.Warnings[len(out.Warnings)-1]
	assert.Contains(t, last, "Check rod_diameter_unit.")
}

func TestCalculateIsIdempotent(t *testing.T) {
	a := Calculate(rodConstants(), steadyReadings())
	b := Calculate(rodConstants(), steadyReadings())
	assert.Equal(t, a, b)
}

func TestTraceTable(t *testing.T) {
	out := Calculate(rodConstants(), steadyReadings())
	rows := TraceTable(out)
	require.Len(t, rows, 18)
	assert.Equal(t, "Vdot", rows[0].Label)
	assert.Equal(t, "K_avg", rows[17].Label)
	assert.Equal(t, out.Trace.KAvg, rows[17].Value)
	assert.Equal(t, []float64{80, 75, 70, 65, 60}, RodProfile(out))
}
