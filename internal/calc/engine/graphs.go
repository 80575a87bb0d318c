package engine

import (
	"Thermolab/internal/calc/conduction"
	"Thermolab/internal/calc/convection"
)

// Point is one (x, y) sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrialSeries is the plot data of one convection trial. Missing surface
// readings are null.
type TrialSeries struct {
	Trial        int        `json:"trial"`
	Surface      []*float64 `json:"surface"`
	Ambient      *float64   `json:"ambient"`
	HExp         *float64   `json:"h_exp"`
	HTheoretical *float64   `json:"h_theoretical"`
}

// Graphs holds the series the front end and the report plot.
type Graphs struct {
	// RodProfile is T1..T5 against distance from T1 in metres.
	RodProfile []Point       `json:"rod_profile,omitempty"`
	Trials     []TrialSeries `json:"trials,omitempty"`
}

func rodGraphs(out conduction.Output) *Graphs {
	dx := out.Normalized.Dx
	temps := conduction.RodProfile(out)
	g := &Graphs{RodProfile: make([]Point, len(temps))}
	for i, t := range temps {
		g.RodProfile[i] = Point{X: float64(i) * dx, Y: t}
	}
	return g
}

func tubeGraphs(res convection.Results) *Graphs {
	g := &Graphs{Trials: make([]TrialSeries, 0, len(res.Trials))}
	for _, tr := range res.Trials {
		g.Trials = append(g.Trials, TrialSeries{
			Trial:        tr.Trial,
			Surface:      tr.Temps[:],
			Ambient:      tr.Ta,
			HExp:         tr.HExp,
			HTheoretical: tr.HTheoretical,
		})
	}
	return g
}
