package explain

import (
	"fmt"

	"Thermolab/internal/calc/convection"
)

var overview = []string{
	"Natural convection depends on temperature difference and fluid properties; Ra and Nu connect theory to the heat transfer coefficient h.",
	"We compute h_theoretical from correlations as a benchmark; experiments often differ due to real-world losses and measurement uncertainty.",
	"Glossary: Ts = average surface temperature, Ta = ambient temperature, dT = Ts - Ta, Ra = Gr x Pr, Nu = hL/k.",
}

// Best names the trial with the highest measured h.
type Best struct {
	Trial int     `json:"trial"`
	HExp  float64 `json:"h_exp"`
}

// Summary is the narrative over all trials.
type Summary struct {
	Overview         []string `json:"overview"`
	Best             *Best    `json:"best,omitempty"`
	MeanHExp         *float64 `json:"mean_h_exp,omitempty"`
	MeanHTheoretical *float64 `json:"mean_h_theoretical,omitempty"`
	MeanDeviation    *float64 `json:"mean_deviation,omitempty"`
	Conclusions      []string `json:"conclusions"`
}

// Summarize builds the overall interpretation. Means and the best trial
// only consider trials with both coefficients and a non-zero prediction.
func Summarize(res convection.Results) Summary {
	s := Summary{Overview: overview}

	var sumExp, sumTheo, sumDev float64
	n := 0
	for _, tr := range res.Trials {
		dev := DeviationOf(tr.HExp, tr.HTheoretical)
		if dev == nil {
			continue
		}
		n++
		sumExp += *tr.HExp
		sumTheo += *tr.HTheoretical
		sumDev += dev.Percent
		if s.Best == nil || *tr.HExp > s.Best.HExp {
			s.Best = &Best{Trial: tr.Trial, HExp: *tr.HExp}
		}
	}
	if n > 0 {
		me, mt, md := sumExp/float64(n), sumTheo/float64(n), sumDev/float64(n)
		s.MeanHExp, s.MeanHTheoretical, s.MeanDeviation = &me, &mt, &md
	}

	for _, tr := range res.Trials {
		s.Conclusions = append(s.Conclusions, Conclusion(tr))
	}
	return s
}

// Conclusion is the templated sentence for the lab record.
func Conclusion(tr convection.TrialResult) string {
	devText := "N/A"
	if dev := DeviationOf(tr.HExp, tr.HTheoretical); dev != nil {
		devText = num(dev.Percent)
	}
	return fmt.Sprintf("The experimental heat transfer coefficient was h_exp = %s W/m^2K and the theoretical value predicted by correlation was h_theoretical = %s W/m^2K for Trial %d. "+
		"The deviation was %s%%, mainly due to steady-state errors, property mismatch, or heat losses.",
		opt(tr.HExp), opt(tr.HTheoretical), tr.Trial, devText)
}

// Lines renders the summary as paragraphs in reading order.
func (s Summary) Lines() []string {
	out := append([]string(nil), s.Overview...)
	if s.Best != nil {
		out = append(out, fmt.Sprintf("Trial %d shows the highest experimental h (%s W/m^2K), which is consistent with its larger dT or higher Q.",
			s.Best.Trial, num(s.Best.HExp)))
	}
	if s.MeanHExp != nil {
		out = append(out, fmt.Sprintf("Mean h_exp = %s W/m^2K, mean h_theoretical = %s W/m^2K, mean deviation = %s%%.",
			num(*s.MeanHExp), num(*s.MeanHTheoretical), num(*s.MeanDeviation)))
	}
	if len(s.Conclusions) > 0 {
		out = append(out, "Lab record conclusion (template):")
		out = append(out, s.Conclusions...)
	}
	return out
}
