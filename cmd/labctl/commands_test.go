package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
	"Thermolab/internal/pkg/logger"
)

const convectionYAML = `
observations:
  - {trial: 1, v: 100, i: 0.5, t1: 60, t2: 61, t3: 62, t4: 63, t5: 64, t6: 65, t7: 30}
  - {trial: 2, v: 120, i: 0.6, t1: 70, t2: 71, t3: 72, t4: 73, t5: 74, t6: 75, t7: 31}
air_props_mode: auto
`

const rodYAML = `
flow_rate_value: 0.15
flow_rate_unit: L/min
t_wi: 20
t_wo: 21
t1: 80
t2: 75
t3: 70
t4: 65
t5: 60
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadInputsYAML(t *testing.T) {
	raw, err := readInputs(writeFile(t, "nc.yaml", convectionYAML))
	require.NoError(t, err)
	assert.Len(t, raw["observations"], 2)
	assert.Equal(t, "auto", raw["air_props_mode"])
}

func TestConstantsFor(t *testing.T) {
	consts, err := constantsFor(domain.SlugThermalConductivity, "")
	require.NoError(t, err)
	assert.Contains(t, consts, "d_rod")

	_, err = constantsFor("pin-fin", "")
	assert.ErrorIs(t, err, engine.ErrConstantsNotFound)

	path := writeFile(t, "consts.yaml", "d_tube: {value: 0.04, unit: m}\n")
	consts, err = constantsFor(domain.SlugNaturalConvection, path)
	require.NoError(t, err)
	assert.Equal(t, 0.04, consts["d_tube"].Value)
}

func runCmd(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, fn(cmd, args))
	return out.String()
}

func TestCalcCommandRod(t *testing.T) {
	inputsFile, constantsFile, plot, asJSON = writeFile(t, "rod.yaml", rodYAML), "", true, false
	t.Cleanup(func() { plot = false })

	out := runCmd(t, runCalc, domain.SlugThermalConductivity)
	assert.Contains(t, out, "Qw = m_dot Cp (T_wo - T_wi)")
	assert.Contains(t, out, "K_avg")
	assert.Contains(t, out, "rod temperature T1..T5")
}

func TestCalcCommandConvectionJSON(t *testing.T) {
	inputsFile, constantsFile, plot, asJSON = writeFile(t, "nc.yaml", convectionYAML), "", false, true
	t.Cleanup(func() { asJSON = false })

	out := runCmd(t, runCalc, domain.SlugNaturalConvection)
	assert.Contains(t, out, `"trial_steps"`)
	assert.Contains(t, out, `"final_explanation"`)
}

func TestPlotResult(t *testing.T) {
	assert.Equal(t, "nothing to plot", plotResult(engine.Result{}))

	h := 5.0
	one := plotResult(engine.Result{Graphs: &engine.Graphs{Trials: []engine.TrialSeries{{Trial: 1, HExp: &h, HTheoretical: &h}}}})
	assert.Contains(t, one, "h per trial")

	none := plotResult(engine.Result{Graphs: &engine.Graphs{Trials: []engine.TrialSeries{{Trial: 1}}}})
	assert.Equal(t, "no trial has both h values", none)
}

func TestReportCommand(t *testing.T) {
	inputsFile, constantsFile = writeFile(t, "rod.yaml", rodYAML), ""
	outFile = filepath.Join(t.TempDir(), "rod.pdf")
	studentName, usn, runDate = "A. Student", "1XX21ME001", "2024-07-15"

	out := runCmd(t, runReport, domain.SlugThermalConductivity)
	assert.Contains(t, out, "report written")
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReportCommandRejectsBadDate(t *testing.T) {
	runDate = "15/07/2024"
	t.Cleanup(func() { runDate = "" })
	err := runReport(&cobra.Command{}, []string{domain.SlugThermalConductivity})
	assert.Error(t, err)
}

func TestEvaluateLogsThroughSugar(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(zap.NewNop()) })

	constantsFile = ""
	raw, err := readInputs(writeFile(t, "rod.yaml", rodYAML))
	require.NoError(t, err)
	_, err = evaluate(domain.SlugThermalConductivity, raw)
	require.NoError(t, err)

	entries := logs.FilterMessage("evaluated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SlugThermalConductivity, entries[0].ContextMap()["slug"])
}
