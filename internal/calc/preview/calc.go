// Package preview produces the quick "what if" curves shown before a
// student submits readings. The curves are illustrative, not the
// experiment's reduction.
package preview

import (
	"fmt"
	"math"

	"Thermolab/internal/domain"
)

const points = 10

// Rod preview model: a 0.3 m copper bar fed by a heater with 90% of its
// power reaching the bar.
const (
	rodLength     = 0.3
	rodDiameter   = 0.035
	copperK       = 385.0
	heaterEff     = 0.9
	coolantStartC = 25.0
	waterCp       = 4180.0
)

type RodInput struct {
	FlowLmin float64 `json:"flow"`  // L/min
	Watts    float64 `json:"watts"` // heater power
}

type RodResult struct {
	X     []float64 `json:"x"`
	Temps []float64 `json:"temps"`
}

// Rod returns the linear steady profile from the hot end.
func Rod(in RodInput) (RodResult, error) {
	if in.FlowLmin < 0 || in.Watts < 0 {
		return RodResult{}, fmt.Errorf("flow and watts must not be negative")
	}
	if in.FlowLmin == 0 {
		in.FlowLmin = 0.15
	}
	if in.Watts == 0 {
		in.Watts = 40
	}

	area := math.Pi * rodDiameter * rodDiameter / 4
	gradient := in.Watts * heaterEff / (copperK * area)
	tCold := coolantStartC + in.Watts/(in.FlowLmin*waterCp/60*10)
	tHot := tCold + gradient*rodLength

	x := linspace(0, rodLength, points)
	res := RodResult{X: x, Temps: make([]float64, len(x))}
	for i, xi := range x {
		res.Temps[i] = tHot - gradient*xi
	}
	return res, nil
}

type TubeInput struct {
	Q      float64 `json:"q"`       // W
	DeltaT float64 `json:"delta_t"` // K
	DTube  float64 `json:"d_tube"`  // m
	LTube  float64 `json:"l_tube"`  // m
}

type TubeResult struct {
	Q      []float64 `json:"q"`
	H      []float64 `json:"h"`
	DeltaT float64   `json:"delta_t"`
}

// Tube sweeps heater power around Q and returns h = Q / (A_s dT) for each.
func Tube(in TubeInput) (TubeResult, error) {
	if in.Q < 0 || in.DeltaT < 0 {
		return TubeResult{}, fmt.Errorf("q and delta_t must not be negative")
	}
	if in.Q == 0 {
		in.Q = 100
	}
	if in.DeltaT == 0 {
		in.DeltaT = 30
	}
	if in.DTube <= 0 {
		in.DTube = 0.038
	}
	if in.LTube <= 0 {
		in.LTube = 0.5
	}

	areaS := math.Pi * in.DTube * in.LTube
	qMin := math.Max(10, in.Q*0.4)
	qMax := math.Max(qMin+10, in.Q*1.6)

	res := TubeResult{Q: linspace(qMin, qMax, points), DeltaT: in.DeltaT}
	res.H = make([]float64, len(res.Q))
	for i, q := range res.Q {
		res.H[i] = q / (areaS * in.DeltaT)
	}
	return res, nil
}

// Input selects the preview by slug; fields of the other experiment are ignored.
type Input struct {
	Slug string `json:"slug"`
	RodInput
	TubeInput
}

// Calculate dispatches on Slug, defaulting to the rod preview.
func Calculate(in Input) (any, error) {
	if in.Slug == domain.SlugNaturalConvection {
		return Tube(in.TubeInput)
	}
	return Rod(in.RodInput)
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
