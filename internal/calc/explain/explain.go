// Package explain writes the narrative that accompanies convection results:
// a block per trial and an overall summary with report-ready conclusions.
// It only reads computed results.
package explain

import (
	"fmt"
	"math"
	"slices"

	"Thermolab/internal/calc/convection"
	"Thermolab/internal/calc/numfmt"
)

// Regime classifies a Rayleigh number.
type Regime string

const (
	RegimeUnavailable  Regime = "unavailable"
	RegimeVeryWeak     Regime = "very-weak"
	RegimeLaminar      Regime = "laminar"
	RegimeTurbulent    Regime = "turbulent"
	RegimeExtrapolated Regime = "extrapolated"
)

func Classify(ra *float64) Regime {
	switch {
	case ra == nil:
		return RegimeUnavailable
	case *ra < 1e4:
		return RegimeVeryWeak
	case *ra < convection.TurbulentRa:
		return RegimeLaminar
	case *ra < 1e12:
		return RegimeTurbulent
	}
	return RegimeExtrapolated
}

func (r Regime) Describe() string {
	switch r {
	case RegimeVeryWeak:
		return "very weak natural convection (correlation may not apply)"
	case RegimeLaminar:
		return "laminar natural convection on a vertical surface (using C=0.56, n=0.25)"
	case RegimeTurbulent:
		return "turbulent natural convection (using C=0.13, n=1/3)"
	case RegimeExtrapolated:
		return "outside standard range; result is an extrapolation"
	}
	return "Rayleigh number not available."
}

// Agreement grades the gap between measured and predicted h.
type Agreement string

const (
	AgreementGood     Agreement = "good"
	AgreementModerate Agreement = "moderate"
	AgreementLarge    Agreement = "large"
)

func (a Agreement) Describe() string {
	switch a {
	case AgreementGood:
		return "good agreement"
	case AgreementModerate:
		return "moderate mismatch (common in teaching labs)"
	}
	return "large mismatch; likely heat losses or measurement/property errors"
}

// Deviation is |h_exp - h_theoretical| / h_theoretical in percent.
type Deviation struct {
	Percent   float64   `json:"percent"`
	Agreement Agreement `json:"agreement"`
}

const (
	goodLimit     = 20.0
	moderateLimit = 50.0
)

// DeviationOf returns nil when either coefficient is unavailable or the
// prediction is zero.
func DeviationOf(hExp, hTheo *float64) *Deviation {
	if hExp == nil || hTheo == nil || *hTheo == 0 {
		return nil
	}
	pct := math.Abs(*hExp-*hTheo) / *hTheo * 100
	a := AgreementLarge
	switch {
	case pct <= goodLimit:
		a = AgreementGood
	case pct <= moderateLimit:
		a = AgreementModerate
	}
	return &Deviation{Percent: pct, Agreement: a}
}

// Checklist is offered when a trial disagrees badly with the correlation.
var Checklist = []string{
	"Steady state reached?",
	"T7 truly ambient?",
	"Radiation losses ignored",
	"Air properties (k, mu, Pr) at film temperature",
	"Instrument calibration",
}

// TrialBlock is the narrative for one trial.
type TrialBlock struct {
	Trial     int        `json:"trial"`
	Complete  bool       `json:"complete"`
	Regime    Regime     `json:"regime"`
	Deviation *Deviation `json:"deviation,omitempty"`
	Checklist []string   `json:"checklist,omitempty"`
	Lines     []string   `json:"lines"`
}

var num, opt = numfmt.Num, numfmt.Opt

// Trial explains one trial result.
func Trial(tr convection.TrialResult) TrialBlock {
	b := TrialBlock{Trial: tr.Trial, Regime: Classify(tr.Ra)}
	if tr.Ts == nil || tr.Ta == nil || tr.DeltaT == nil {
		b.Lines = []string{"Some required temperatures are missing, so calculations could not be completed for this trial."}
		return b
	}
	b.Complete = true
	b.Deviation = DeviationOf(tr.HExp, tr.HTheoretical)

	c, n := "-", "-"
	if tr.Corr != nil {
		c, n = num(tr.Corr.C), num(tr.Corr.N)
	}
	b.Lines = []string{
		fmt.Sprintf("Q = V x I = %s W. This is the electrical power supplied to the heater; higher Q generally raises tube surface temperature.", num(tr.Q)),
		fmt.Sprintf("Ts = %s C, Ta = %s C, dT = %s K. The temperature difference is the driving force for natural convection; larger dT usually increases convection strength.",
			opt(tr.Ts), opt(tr.Ta), opt(tr.DeltaT)),
		fmt.Sprintf("Ra = %s. This indicates the strength of natural convection (buoyancy vs viscosity and thermal diffusion). Regime: %s.", opt(tr.Ra), b.Regime.Describe()),
		fmt.Sprintf("Correlation used: C = %s, n = %s.", c, n),
		fmt.Sprintf("h_exp = %s W/m^2K (from power balance), h_theoretical = %s W/m^2K (from correlation).", opt(tr.HExp), opt(tr.HTheoretical)),
	}
	if b.Deviation == nil {
		b.Lines = append(b.Lines, "Deviation not available (theoretical value missing or zero).")
		return b
	}
	b.Lines = append(b.Lines, fmt.Sprintf("Deviation = %s%%. Interpretation: %s.", num(b.Deviation.Percent), b.Deviation.Agreement.Describe()))
	if b.Deviation.Percent > moderateLimit {
		b.Checklist = slices.Clone(Checklist)
	}
	return b
}

// Trials explains every trial in order.
func Trials(res convection.Results) []TrialBlock {
	out := make([]TrialBlock, 0, len(res.Trials))
	for _, tr := range res.Trials {
		out = append(out, Trial(tr))
	}
	return out
}
