// Package conduction evaluates the metal-rod thermal conductivity experiment.
//
// Heat picked up by the cooling water is carried back along the rod towards
// the heater. Each of the three insulated sections XX, YY and ZZ adds its
// radial loss to the heat that has to flow through it, so sections are folded
// in order from the water end to the heater end.
package conduction

import (
	"math"
	"strings"

	"Thermolab/internal/calc/diag"
	"Thermolab/internal/calc/numfmt"
	"Thermolab/internal/calc/units"
	"Thermolab/internal/domain"
)

const (
	MinPlausibleK = 1.0
	MaxPlausibleK = 2000.0

	// Guardrail thresholds for a water heat gain that is too small to be real.
	minMeaningfulDeltaT = 0.5
	minMeaningfulFlow   = 0.05 // L/min
	minMeaningfulQw     = 0.1  // W
)

// Section describes one insulated rod section.
type Section struct {
	Name     string  `json:"name"`
	Length   float64 `json:"length"`
	Gradient float64 `json:"gradient"`
	InsInner float64 `json:"ins_inner"`
	InsOuter float64 `json:"ins_outer"`
}

// SectionResult is the state of the fold after one section.
type SectionResult struct {
	Section
	Loss float64 `json:"loss"`
	Heat float64 `json:"heat"`
	K    float64 `json:"k"`
}

// Trace holds every intermediate of one calculation.
type Trace struct {
	Qw          float64         `json:"qw"`
	DeltaTWater float64         `json:"delta_t_water"`
	Area        float64         `json:"area"`
	Grads       [3]float64      `json:"grads"`
	Qs          [3]float64      `json:"qs"`
	Ks          [3]float64      `json:"ks"`
	KAvg        float64         `json:"k_avg"`
	LnRoRi      float64         `json:"ln_ro_ri"`
	RadFactor   float64         `json:"rad_factor"`
	LossXX      float64         `json:"loss_xx"`
	LossYY      float64         `json:"loss_yy"`
	LossZZ      float64         `json:"loss_zz"`
	Sections    []SectionResult `json:"sections"`
}

// Results is the headline subset of the trace.
type Results struct {
	Qw    float64    `json:"qw"`
	Area  float64    `json:"area"`
	Grads [3]float64 `json:"grads"`
	Qs    [3]float64 `json:"qs"`
	Ks    [3]float64 `json:"ks"`
	KAvg  float64    `json:"k_avg"`
}

// Output is the full result of Calculate.
type Output struct {
	RawInputs  units.RawRodInputs `json:"raw_inputs"`
	Normalized units.RodInputs    `json:"normalized"`
	Results    Results            `json:"results"`
	Trace      Trace              `json:"trace"`
	Warnings   []string           `json:"warnings"`
	Suspects   []string           `json:"suspects"`
}

// Calculate normalises raw and runs the heat balance. It never fails; bad
// data degrades to zeros plus warnings.
func Calculate(consts domain.Constants, raw domain.RawInputs) Output {
	d := diag.New()
	norm := units.Normalize(raw, consts, d)
	tr := Evaluate(norm.Normalized, d)
	return Output{
		RawInputs:  norm.Raw,
		Normalized: norm.Normalized,
		Results: Results{
			Qw:    tr.Qw,
			Area:  tr.Area,
			Grads: tr.Grads,
			Qs:    tr.Qs,
			Ks:    tr.Ks,
			KAvg:  tr.KAvg,
		},
		Trace:    tr,
		Warnings: d.Warnings(),
		Suspects: d.Suspects(),
	}
}

// Evaluate runs the heat balance on already-normalised inputs.
func Evaluate(n units.RodInputs, d *diag.Diagnostics) Trace {
	var tr Trace
	tr.DeltaTWater = n.TWaterOut - n.TWaterIn
	tr.Qw = n.MDot * n.Cpw * tr.DeltaTWater
	tr.Area = n.Area

	var grads [3]float64
	if n.Dx != 0 {
		grads = [3]float64{
			(n.TRod[0] - n.TRod[2]) / (2 * n.Dx),
			(n.TRod[1] - n.TRod[3]) / (2 * n.Dx),
			(n.TRod[2] - n.TRod[4]) / (2 * n.Dx),
		}
	} else {
		d.Flag("dx_unit", "dx is zero; gradients are set to 0.")
	}
	tr.Grads = grads

	tr.LnRoRi = logRatio(n.Ro, n.Ri)
	if tr.LnRoRi != 0 {
		tr.RadFactor = 2 * math.Pi * n.Kins / tr.LnRoRi
	}

	sections := []Section{
		{Name: "XX", Length: n.L1, Gradient: grads[0], InsInner: n.TIns.T12, InsOuter: n.TIns.T13},
		{Name: "YY", Length: n.L2, Gradient: grads[1], InsInner: n.TIns.T8, InsOuter: n.TIns.T9},
		{Name: "ZZ", Length: n.L3, Gradient: grads[2], InsInner: n.TIns.T6, InsOuter: n.TIns.T7},
	}
	tr.Sections = fold(sections, tr.Qw, tr.RadFactor, tr.Area)
	for i, s := range tr.Sections {
		tr.Qs[i] = s.Heat
		tr.Ks[i] = s.K
	}
	tr.LossXX, tr.LossYY, tr.LossZZ = tr.Sections[0].Loss, tr.Sections[1].Loss, tr.Sections[2].Loss

	if tr.Ks[0] != 0 || tr.Ks[1] != 0 || tr.Ks[2] != 0 {
		tr.KAvg = (tr.Ks[0] + tr.Ks[1] + tr.Ks[2]) / 3.0
	}

	guard(n, tr, d)
	return tr
}

// fold accumulates heat section by section, starting from the water gain.
func fold(sections []Section, qw, radFactor, area float64) []SectionResult {
	out := make([]SectionResult, 0, len(sections))
	heat := qw
	for _, s := range sections {
		loss := radFactor * s.Length * (s.InsInner - s.InsOuter)
		heat += loss
		k := 0.0
		if area != 0 && s.Gradient != 0 {
			k = heat / (area * s.Gradient)
		}
		out = append(out, SectionResult{Section: s, Loss: loss, Heat: heat, K: k})
	}
	return out
}

// logRatio is ln(ro/ri), or 0 when either radius is not positive.
func logRatio(ro, ri float64) float64 {
	if ro <= 0 || ri <= 0 {
		return 0
	}
	return math.Log(ro / ri)
}

func guard(n units.RodInputs, tr Trace, d *diag.Diagnostics) {
	if tr.DeltaTWater >= minMeaningfulDeltaT && n.FlowLmin >= minMeaningfulFlow && tr.Qw < minMeaningfulQw {
		d.Flag("flow_rate_unit", "Qw is very low for the given flow and deltaT. Check flow units and conversion.")
	}
	if tr.KAvg != 0 && (tr.KAvg > MaxPlausibleK || tr.KAvg < MinPlausibleK) {
		if !d.HasSuspects() {
			d.Suspect(units.GeometryUnitFields...)
		}
		d.Warn("Likely unit error: K_avg = %s W/mK. Check %s.", numfmt.Num(tr.KAvg), strings.Join(d.Suspects(), ", "))
	}
}
