package explain

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/convection"
)

func f(v float64) *float64 { return &v }

func completeTrial(n int, hExp, hTheo, ra float64) convection.TrialResult {
	corr := convection.CorrelationFor(ra)
	return convection.TrialResult{
		Trial: n, Q: 120,
		Ts: f(65), Ta: f(30), DeltaT: f(35),
		Ra: f(ra), Corr: &corr,
		HExp: f(hExp), HTheoretical: f(hTheo),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ra   *float64
		want Regime
	}{
		{nil, RegimeUnavailable},
		{f(5e3), RegimeVeryWeak},
		{f(1e4), RegimeLaminar},
		{f(1e8), RegimeTurbulent},
		{f(1e12), RegimeExtrapolated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.ra))
	}
}

func TestDeviationLabels(t *testing.T) {
	assert.Nil(t, DeviationOf(nil, f(5)))
	assert.Nil(t, DeviationOf(f(5), f(0)))

	d := DeviationOf(f(6), f(5))
	require.NotNil(t, d)
	assert.InDelta(t, 20.0, d.Percent, 1e-9)
	assert.Equal(t, AgreementGood, d.Agreement)

	assert.Equal(t, AgreementModerate, DeviationOf(f(7), f(5)).Agreement)
	assert.Equal(t, AgreementLarge, DeviationOf(f(8), f(5)).Agreement)
}

func TestTrialBlockWithLargeDeviation(t *testing.T) {
	b := Trial(completeTrial(1, 12, 5, 3e8))
	assert.True(t, b.Complete)
	assert.Equal(t, RegimeTurbulent, b.Regime)
	assert.Equal(t, Checklist, b.Checklist)
	assert.Equal(t, "Correlation used: C = 0.130, n = 0.333.", b.Lines[3])
	assert.Equal(t, "Deviation = 140.000%. Interpretation: large mismatch; likely heat losses or measurement/property errors.", b.Lines[len(b.Lines)-1])
}

func TestTrialBlocksOwnTheirChecklist(t *testing.T) {
	first := Trial(completeTrial(1, 12, 5, 3e8))
	second := Trial(completeTrial(2, 12, 5, 3e8))
	want := slices.Clone(Checklist)

	first.Checklist[0] = "edited"
	assert.Equal(t, want, second.Checklist)
	assert.Equal(t, want, Checklist)
}

func TestTrialBlockGoodAgreementHasNoChecklist(t *testing.T) {
	b := Trial(completeTrial(2, 5.5, 5, 5e7))
	assert.Equal(t, RegimeLaminar, b.Regime)
	assert.Empty(t, b.Checklist)
	assert.Equal(t, AgreementGood, b.Deviation.Agreement)
}

func TestTrialBlockMissingTemperatures(t *testing.T) {
	b := Trial(convection.TrialResult{Trial: 3, Q: 40})
	assert.False(t, b.Complete)
	assert.Equal(t, RegimeUnavailable, b.Regime)
	assert.Len(t, b.Lines, 1)
}

func TestTrialBlockWithoutPrediction(t *testing.T) {
	tr := completeTrial(4, 5, 5, 3e8)
	tr.HTheoretical = nil
	b := Trial(tr)
	assert.Nil(t, b.Deviation)
	assert.Equal(t, "Deviation not available (theoretical value missing or zero).", b.Lines[len(b.Lines)-1])
}

func TestSummarize(t *testing.T) {
	res := convection.Results{Trials: []convection.TrialResult{
		completeTrial(1, 6, 5, 3e8),
		completeTrial(2, 8, 5, 3e8),
		{Trial: 3},
	}}
	s := Summarize(res)
	require.NotNil(t, s.Best)
	assert.Equal(t, 2, s.Best.Trial)
	assert.InDelta(t, 7.0, *s.MeanHExp, 1e-9)
	assert.InDelta(t, 5.0, *s.MeanHTheoretical, 1e-9)
	assert.InDelta(t, 40.0, *s.MeanDeviation, 1e-9)
	require.Len(t, s.Conclusions, 3)
	assert.Contains(t, s.Conclusions[2], "for Trial 3. The deviation was N/A%")
	assert.Contains(t, s.Conclusions[0], "h_exp = 6.000 W/m^2K")

	lines := s.Lines()
	assert.Contains(t, lines, "Mean h_exp = 7.000 W/m^2K, mean h_theoretical = 5.000 W/m^2K, mean deviation = 40.000%.")
	assert.Contains(t, lines, "Lab record conclusion (template):")
}

func TestSummarizeWithoutComparableTrials(t *testing.T) {
	s := Summarize(convection.Results{Trials: []convection.TrialResult{{Trial: 1}}})
	assert.Nil(t, s.Best)
	assert.Nil(t, s.MeanDeviation)
	assert.Equal(t, len(overview)+2, len(s.Lines()))
}
