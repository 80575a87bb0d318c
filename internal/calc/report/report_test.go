package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
)

func rodResult(t *testing.T) engine.Result {
	t.Helper()
	res, err := engine.Evaluate(domain.SlugThermalConductivity, domain.Constants{
		"d_rod": {Value: 35, Unit: "mm", Description: "Rod diameter"},
		"kins":  {Value: 0.3005, Unit: "W/mK"},
		"l1":    {Value: 0.025, Unit: "m"}, "l2": {Value: 0.12, Unit: "m"}, "l3": {Value: 0.12, Unit: "m"},
		"ri": {Value: 0.0425, Unit: "m"}, "ro": {Value: 0.055, Unit: "m"},
	}, domain.RawInputs{
		"flow_rate_value": 0.15, "t_wi": 20, "t_wo": 21,
		"t1": 80, "t2": 75, "t3": 70, "t4": 65, "t5": 60,
		"t12": 40, "t13": 30, "t8": 41, "t9": 31, "t6": 42, "t7": 32,
	})
	require.NoError(t, err)
	return res
}

func TestRodReport(t *testing.T) {
	b, err := Bytes(Header{Title: "Thermal conductivity of a metal rod", StudentName: "A. Student", USN: "1XX21ME001", Date: "2026-10-19"}, rodResult(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestReportEncodesAccentedText(t *testing.T) {
	res := rodResult(t)
	res.Constants["kins"] = domain.Constant{Value: 0.3005, Unit: "W/mK", Description: "Isolant (craie, 20 °C)"}

	pdf := Build(Header{StudentName: "José Müller", Instructor: "Ana Ñúñez"}, res)
	pdf.SetCompression(false)
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	out := buf.Bytes()
	assert.True(t, bytes.Contains(out, []byte("Student: Jos\xe9 M\xfcller")))
	assert.True(t, bytes.Contains(out, []byte("Instructor: Ana \xd1\xfa\xf1ez")))
	assert.True(t, bytes.Contains(out, []byte("20 \xb0C")))
	assert.False(t, bytes.Contains(out, []byte("Jos\xc3\xa9")), "raw UTF-8 must not reach the page")
}

func TestConvectionReport(t *testing.T) {
	res, err := engine.Evaluate(domain.SlugNaturalConvection, nil, domain.RawInputs{"observations": []any{
		map[string]any{"v": 80, "i": 1.5, "t1": 70, "t2": 68, "t3": 66, "t4": 64, "t5": 62, "t6": 60, "t7": 30},
		map[string]any{"v": 75, "i": 1.4, "t1": 65},
	}})
	require.NoError(t, err)
	b, err := Bytes(Header{}, res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestFailedResultHasNoReport(t *testing.T) {
	_, err := Bytes(Header{}, engine.Result{Error: "Unknown experiment"})
	assert.ErrorContains(t, err, "Unknown experiment")
}

func TestCharts(t *testing.T) {
	res := rodResult(t)
	png, err := RodChart(res.Graphs.RodProfile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = RodChart(nil)
	assert.ErrorIs(t, err, errNoSeries)

	_, err = TrialChart([]engine.TrialSeries{{Trial: 1, Surface: make([]*float64, 6)}})
	assert.ErrorIs(t, err, errNoSeries)
}
