// Package tracefmt turns a calculation trace into numbered derivation steps:
// each step is a formula with the numbers substituted in, as plain text that
// renders both in the browser and in the PDF report.
package tracefmt

import (
	"fmt"
	"strings"

	"Thermolab/internal/calc/conduction"
	"Thermolab/internal/calc/convection"
	"Thermolab/internal/calc/numfmt"
)

// Step is one derivation step. Lines holds one or more substituted formulas.
type Step struct {
	N     int      `json:"n"`
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

func (s Step) String() string {
	return fmt.Sprintf("%d. %s: %s", s.N, s.Title, strings.Join(s.Lines, "; "))
}

// TrialSteps is the derivation of one convection trial.
type TrialSteps struct {
	Trial int    `json:"trial"`
	Steps []Step `json:"steps"`
}

var num, opt = numfmt.Num, numfmt.Opt

func step(n int, title string, lines ...string) Step {
	return Step{N: n, Title: title, Lines: lines}
}

// Conduction returns the eight steps of a rod calculation.
func Conduction(out conduction.Output) []Step {
	n, tr := out.Normalized, out.Trace
	if len(tr.Sections) != 3 {
		return nil
	}
	gradLine := func(name string, hi, lo, g float64) string {
		return fmt.Sprintf("(dT/dx)_%s = (%s - %s) / (2 x %s) = %s K/m", name, num(hi), num(lo), num(n.Dx), num(g))
	}
	sectionLines := func(i int, prev float64, prevLabel, lenLabel, pair string) []string {
		s := tr.Sections[i]
		name := strings.ToLower(s.Name)
		return []string{
			fmt.Sprintf("Q_%s = %s + 2 pi %s k_ins (%s) / ln(ro/ri) = %s + %s = %s W",
				name, prevLabel, lenLabel, pair, num(prev), num(s.Loss), num(s.Heat)),
			fmt.Sprintf("K_%s = Q_%s / (A (dT/dx)_%s) = %s / (%s x %s) = %s W/mK",
				name, name, name, num(s.Heat), num(tr.Area), num(s.Gradient), num(s.K)),
		}
	}

	return []Step{
		step(1, "Flow conversion",
			fmt.Sprintf("Vdot = %s %s -> %s m^3/s", num(n.FlowRateValue), n.FlowRateUnit, num(n.VdotM3s)),
			fmt.Sprintf("m_dot = rho Vdot = %s x %s = %s kg/s", num(n.Rho), num(n.VdotM3s), num(n.MDot))),
		step(2, "Heat carried by water",
			fmt.Sprintf("Qw = m_dot Cp (T_wo - T_wi) = %s x %s x (%s - %s) = %s W",
				num(n.MDot), numfmt.Digits(n.Cpw, 0), num(n.TWaterOut), num(n.TWaterIn), num(tr.Qw))),
		step(3, "Area of rod",
			fmt.Sprintf("A = pi d^2 / 4 = pi (%s)^2 / 4 = %s m^2", num(n.DRod), num(tr.Area))),
		step(4, "Temperature gradients",
			gradLine("xx", n.TRod[0], n.TRod[2], tr.Grads[0]),
			gradLine("yy", n.TRod[1], n.TRod[3], tr.Grads[1]),
			gradLine("zz", n.TRod[2], n.TRod[4], tr.Grads[2])),
		step(5, "Heat through XX", sectionLines(0, tr.Qw, "Qw", "L1", "T12 - T13")...),
		step(6, "Heat through YY", sectionLines(1, tr.Qs[0], "Q_xx", "L2", "T8 - T9")...),
		step(7, "Heat through ZZ", sectionLines(2, tr.Qs[1], "Q_yy", "L3", "T6 - T7")...),
		step(8, "Average conductivity",
			fmt.Sprintf("K_avg = (K_xx + K_yy + K_zz) / 3 = %s W/mK", num(tr.KAvg))),
	}
}

// Trial returns the ten steps of one convection trial. Unavailable values
// render as "-".
func Trial(tr convection.TrialResult) []Step {
	corr := "C=-, n=-"
	if tr.Corr != nil {
		corr = fmt.Sprintf("C=%g, n=%s, range %s", tr.Corr.C, num(tr.Corr.N), tr.Corr.Range)
	}
	return []Step{
		step(1, "Energy input", fmt.Sprintf("Q = V x I = %s W", num(tr.Q))),
		step(2, "Average surface temperature", fmt.Sprintf("Ts = (T1 + ... + T6) / 6 = %s C", opt(tr.Ts))),
		step(3, "Temperature difference", fmt.Sprintf("dT = Ts - Ta = %s K", opt(tr.DeltaT))),
		step(4, "Film temperature", fmt.Sprintf("Tf = (Ts + Ta) / 2 + 273.15 = %s K", opt(tr.Tf))),
		step(5, "Volumetric coefficient", fmt.Sprintf("beta = 1 / Tf = %s 1/K", opt(tr.Beta))),
		step(6, "Grashof number", fmt.Sprintf("Gr = L^3 beta g dT (rho^2 / mu^2) = %s", opt(tr.Gr))),
		step(7, "Rayleigh number", fmt.Sprintf("Ra = Gr x Pr = %s", opt(tr.Ra))),
		step(8, "Correlation", fmt.Sprintf("Nu = C (Ra)^n = %s (%s)", opt(tr.Nusselt), corr)),
		step(9, "h from correlation", fmt.Sprintf("h = Nu k / L = %s W/m^2K", opt(tr.HTheoretical))),
		step(10, "h from power balance", fmt.Sprintf("h = Q / (A_s dT) = %s W/m^2K", opt(tr.HExp))),
	}
}

// Convection returns the steps of every trial in order.
func Convection(res convection.Results) []TrialSteps {
	out := make([]TrialSteps, 0, len(res.Trials))
	for _, tr := range res.Trials {
		out = append(out, TrialSteps{Trial: tr.Trial, Steps: Trial(tr)})
	}
	return out
}

// Lines renders steps as "n. Title: formula" strings.
func Lines(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.String()
	}
	return out
}
