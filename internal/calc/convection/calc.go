// Package convection evaluates the natural-convection vertical-tube
// experiment: a heated tube in still air, observed over one or more trials.
package convection

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"Thermolab/internal/calc/airprops"
	"Thermolab/internal/calc/diag"
	"Thermolab/internal/calc/numparse"
	"Thermolab/internal/domain"
)

var ErrNoTrials = errors.New("convection: no observation trials provided")

const (
	DefaultTubeDiameter = 0.038
	DefaultTubeLength   = 0.5
	DefaultGravity      = 9.81

	// TurbulentRa is the Rayleigh number from which the turbulent
	// correlation applies.
	TurbulentRa = 1e8
	minCorrRa   = 1e4
	maxCorrRa   = 1e12

	kelvinOffset = 273.15
)

// Correlation is the Nu = C Ra^n pair chosen for a trial.
type Correlation struct {
	C     float64 `json:"c"`
	N     float64 `json:"n"`
	Range string  `json:"range"`
}

var (
	Laminar   = Correlation{C: 0.56, N: 0.25, Range: "1e4-1e8"}
	Turbulent = Correlation{C: 0.13, N: 1.0 / 3.0, Range: "1e8-1e12"}
)

// CorrelationFor selects the correlation for ra.
func CorrelationFor(ra float64) Correlation {
	if ra >= TurbulentRa {
		return Turbulent
	}
	return Laminar
}

// Extrapolated reports whether ra lies outside the range either correlation covers.
func Extrapolated(ra float64) bool {
	return ra < minCorrRa || ra > maxCorrRa
}

// Geometry is the tube and gravity resolved from the experiment constants.
type Geometry struct {
	DTube float64 `json:"d_tube"`
	LTube float64 `json:"l_tube"`
	G     float64 `json:"g"`
	AreaS float64 `json:"area_s"`
}

func geometry(consts domain.Constants) Geometry {
	num := func(key string, def float64) float64 {
		c, ok := consts.Lookup(key)
		if !ok || domain.IsBlank(c.Value) {
			return def
		}
		return numparse.Parse(c.Value)
	}
	g := Geometry{
		DTube: num("d_tube", DefaultTubeDiameter),
		LTube: num("L_tube", DefaultTubeLength),
		G:     num("g", DefaultGravity),
	}
	if g.DTube != 0 && g.LTube != 0 {
		g.AreaS = math.Pi * g.DTube * g.LTube
	}
	return g
}

// TrialResult is the evaluation of one observation. Nil fields are
// unavailable for this trial.
type TrialResult struct {
	Trial int         `json:"trial"`
	V     float64     `json:"v"`
	I     float64     `json:"i"`
	Temps [6]*float64 `json:"temps"`
	Ta    *float64    `json:"ta"`
	Q     float64     `json:"q"`

	Ts     *float64 `json:"ts"`
	DeltaT *float64 `json:"delta_t"`
	Tf     *float64 `json:"tf"`
	Beta   *float64 `json:"beta"`

	Props *Resolved `json:"props"`

	Gr           *float64     `json:"gr"`
	Ra           *float64     `json:"ra"`
	Nusselt      *float64     `json:"nu_nusselt"`
	HExp         *float64     `json:"h_exp"`
	HTheoretical *float64     `json:"h_theoretical"`
	Corr         *Correlation `json:"correlation"`

	AreaS       float64  `json:"area_s"`
	PropsSource Mode     `json:"props_source"`
	Warnings    []string `json:"warnings"`
}

// Results holds every trial plus the cross-trial means.
type Results struct {
	Trials      []TrialResult `json:"trials"`
	PropsSource Mode          `json:"props_source"`
	Geometry    Geometry      `json:"geometry"`
	AreaS       float64       `json:"area_s"`

	// Means over trials where both coefficients are available.
	MeanHExp         *float64 `json:"mean_h_exp"`
	MeanHTheoretical *float64 `json:"mean_h_theoretical"`
	Compared         int      `json:"compared"`
}

// RawInputs echoes the observations and property settings as read.
type RawInputs struct {
	Observations []Observation `json:"observations"`
	Mode         Mode          `json:"air_props_mode"`
	Manual       ManualProps   `json:"manual"`
}

// Output is the full result of Calculate.
type Output struct {
	RawInputs RawInputs `json:"raw_inputs"`
	Results   Results   `json:"results"`
	Warnings  []string  `json:"warnings"`
	Suspects  []string  `json:"suspects"`
}

// Calculate parses the trials in raw and evaluates each one. It fails only
// with ErrNoTrials.
func Calculate(consts domain.Constants, raw domain.RawInputs) (Output, error) {
	d := diag.New()
	geo := geometry(consts)
	mode := ParseMode(raw["air_props_mode"])

	var manual ManualProps
	if mode == ModeManual {
		manual = readManual(raw, d)
		manual.check(d)
	}

	obs := ParseObservations(raw)
	if len(obs) == 0 {
		return Output{}, ErrNoTrials
	}

	res := Results{PropsSource: mode, Geometry: geo, AreaS: geo.AreaS}
	for _, o := range obs {
		td := diag.New()
		tr := Evaluate(o, geo, mode, manual, td)
		tr.Warnings = td.Warnings()
		d.Merge(trialPrefix(tr.Trial), td)
		res.Trials = append(res.Trials, tr)
	}
	res.MeanHExp, res.MeanHTheoretical, res.Compared = means(res.Trials)

	return Output{
		RawInputs: RawInputs{Observations: obs, Mode: mode, Manual: manual},
		Results:   res,
		Warnings:  d.Warnings(),
		Suspects:  d.Suspects(),
	}, nil
}

func trialPrefix(n int) string {
	return "Trial " + strconv.Itoa(n) + ": "
}

// Evaluate runs one trial. Problems become warnings in d and unavailable
// fields in the result.
func Evaluate(o Observation, geo Geometry, mode Mode, manual ManualProps, d *diag.Diagnostics) TrialResult {
	tr := TrialResult{
		Trial:       o.Trial,
		V:           o.V,
		I:           o.I,
		Temps:       o.Temps,
		Ta:          o.Ta,
		Q:           o.V * o.I,
		AreaS:       geo.AreaS,
		PropsSource: mode,
	}
	if len(o.Unreadable) > 0 {
		d.Warn("Could not read %s; using 0.", strings.Join(o.Unreadable, ", "))
	}
	if o.Missing() {
		d.Warn("Missing temperature inputs for this trial.")
		return tr
	}

	var sum float64
	for _, t := range o.Temps {
		sum += *t
	}
	ts := sum / float64(len(o.Temps))
	ta := *o.Ta
	deltaT := ts - ta

	if o.V <= 0 || o.I <= 0 {
		d.Suspect("v", "i")
		d.Warn("Voltage or current is non-positive. Check readings.")
	}
	if deltaT <= 0 {
		d.Warn("Surface temperature is not above ambient; deltaT is non-positive.")
	}

	tf := (ts+ta)/2 + kelvinOffset
	beta := 0.0
	if tf != 0 {
		beta = 1 / tf
	}
	props := resolve(mode, manual, tf)
	tr.Ts, tr.DeltaT, tr.Tf, tr.Beta, tr.Props = &ts, &deltaT, &tf, &beta, &props

	if props.UsedTable(mode) && !airprops.InRange(tf) {
		d.Warn("Film temperature is outside auto-property table range; values were clamped.")
	}
	if mode == ModeManual && len(props.Substituted) > 0 {
		d.Warn("Manual air properties were incomplete; auto values were used for %s.", strings.Join(props.Substituted, ", "))
	}
	if deltaT <= 0 {
		return tr
	}

	l := geo.LTube
	gr := 0.0
	if props.Mu != 0 {
		gr = l * l * l * beta * geo.G * deltaT * props.Rho * props.Rho / (props.Mu * props.Mu)
	}
	ra := gr * props.Pr
	corr := CorrelationFor(ra)
	if Extrapolated(ra) {
		d.Warn("Rayleigh number is outside correlation ranges; using nearest correlation.")
	}
	nu := 0.0
	if ra > 0 {
		nu = corr.C * math.Pow(ra, corr.N)
	}
	hTheo := 0.0
	if l != 0 {
		hTheo = nu * props.K / l
	}
	hExp := 0.0
	if geo.AreaS != 0 {
		hExp = tr.Q / (geo.AreaS * deltaT)
	}

	tr.Gr, tr.Ra, tr.Nusselt, tr.Corr = &gr, &ra, &nu, &corr
	tr.HExp = nonZero(hExp)
	tr.HTheoretical = nonZero(hTheo)
	return tr
}

func means(trials []TrialResult) (hExp, hTheo *float64, n int) {
	var se, st float64
	for _, t := range trials {
		if t.HExp == nil || t.HTheoretical == nil {
			continue
		}
		se += *t.HExp
		st += *t.HTheoretical
		n++
	}
	if n == 0 {
		return nil, nil, 0
	}
	me, mt := se/float64(n), st/float64(n)
	return &me, &mt, n
}

func nonZero(v float64) *float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
