package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"Thermolab/internal/auth"
	"Thermolab/internal/calc/conduction"
	"Thermolab/internal/calc/engine"
	"Thermolab/internal/calc/importer"
	"Thermolab/internal/calc/numfmt"
	"Thermolab/internal/calc/report"
	"Thermolab/internal/config"
	"Thermolab/internal/domain"
	"Thermolab/internal/experiments"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
	"Thermolab/internal/validator"
)

// readInputs decodes a readings file. YAML is a superset of JSON, so both
// work.
func readInputs(path string) (domain.RawInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw domain.RawInputs
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return raw, nil
}

// constantsFor returns the constants from path, or the built-in catalog
// entry when path is empty.
func constantsFor(slug, path string) (domain.Constants, error) {
	if path == "" {
		c, err := experiments.Builtin()
		if err != nil {
			return nil, err
		}
		e, ok := c.Get(slug)
		if !ok {
			return nil, fmt.Errorf("%w: %s", engine.ErrConstantsNotFound, slug)
		}
		return e.Content.Constants, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var consts domain.Constants
	if err := yaml.Unmarshal(data, &consts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return consts, nil
}

func evaluate(slug string, raw domain.RawInputs) (engine.Result, error) {
	consts, err := constantsFor(slug, constantsFile)
	if err != nil {
		return engine.Result{}, err
	}
	res, err := engine.Evaluate(slug, consts, raw)
	if err != nil {
		return res, err
	}
	logger.Sugar.Debugw("evaluated", "slug", slug, "warnings", len(res.Warnings), "suspects", res.Suspects)
	return res, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	raw, err := readInputs(inputsFile)
	if err != nil {
		return err
	}
	res, err := evaluate(args[0], raw)
	if err != nil {
		return err
	}
	return show(cmd.OutOrStdout(), res)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	raw, err := importer.Read(f, args[0])
	if err != nil {
		return err
	}
	res, err := evaluate(args[0], raw)
	if err != nil {
		return err
	}
	return show(cmd.OutOrStdout(), res)
}

func runReport(cmd *cobra.Command, args []string) error {
	h := report.Header{StudentName: studentName, USN: usn, Date: runDate, Instructor: instructor}
	if err := validator.Validate(struct {
		Date string `json:"date" validate:"isodate"`
	}{runDate}); err != nil {
		return err
	}
	raw, err := readInputs(inputsFile)
	if err != nil {
		return err
	}
	res, err := evaluate(args[0], raw)
	if err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := report.Write(f, h, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outFile)
	return nil
}

func listExperiments(cmd *cobra.Command, args []string) error {
	c, err := experiments.Builtin()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, e := range c.All() {
		fmt.Fprintf(w, "%s\t%s\n", e.Slug, e.Title)
		for name, k := range e.Content.Constants {
			fmt.Fprintf(w, "  %s\t%v %s\t%s\n", name, k.Value, k.Unit, k.Description)
		}
	}
	return w.Flush()
}

func openRepo(cmd *cobra.Command) (*repo.PostgresExperimentRepository, *repo.PostgresUserRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.CatalogOnly {
		return nil, nil, nil, fmt.Errorf("CATALOG_ONLY is set; there is no database to use")
	}
	db, err := repo.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repo.Migrate(cmd.Context(), db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return repo.NewPostgresExperimentDB(db), repo.NewPostgresUserDB(db), func() { db.Close() }, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	exps, _, done, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer done()
	c, err := experiments.Builtin()
	if err != nil {
		return err
	}
	added, err := repo.Seed(cmd.Context(), exps, c.All())
	if err != nil {
		return err
	}
	logger.Sugar.Infof("seeded %d experiment(s)", added)
	fmt.Fprintf(cmd.OutOrStdout(), "%d experiment(s) seeded\n", added)
	return nil
}

func addInstructor(cmd *cobra.Command, args []string) error {
	if err := validator.Validate(auth.Registerrequest{Login: login, Email: email, Password: password}); err != nil {
		return err
	}
	_, users, done, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer done()
	id, err := auth.CreateInstructor(cmd.Context(), users, login, email, password)
	if err != nil {
		return err
	}
	logger.Sugar.Infow("instructor created", "login", login, "id", id)
	fmt.Fprintf(cmd.OutOrStdout(), "instructor %s created (id %d)\n", login, id)
	return nil
}

func show(w io.Writer, res engine.Result) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(w, res)
	if plot {
		fmt.Fprintln(w)
		fmt.Fprintln(w, plotResult(res))
	}
	return nil
}

func printResult(w io.Writer, res engine.Result) {
	fmt.Fprintf(w, "%s\n\n", res.Slug)
	for _, s := range res.Steps {
		fmt.Fprintln(w, s.String())
	}
	for _, ts := range res.TrialSteps {
		fmt.Fprintf(w, "Trial %d\n", ts.Trial)
		for _, s := range ts.Steps {
			fmt.Fprintf(w, "  %s\n", s.String())
		}
	}
	if len(res.TraceTable) > 0 {
		fmt.Fprintln(w)
		printTable(w, res.TraceTable)
	}
	if res.FinalExplanation != nil {
		fmt.Fprintln(w)
		for _, l := range res.FinalExplanation.Lines() {
			fmt.Fprintln(w, l)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "\nwarnings:")
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
}

func printTable(w io.Writer, rows []conduction.Row) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Label, numfmt.Num(r.Value), r.Unit)
	}
	tw.Flush()
}

// plotResult draws the rod profile, or h_exp and h_theoretical per trial.
func plotResult(res engine.Result) string {
	if res.Graphs == nil {
		return "nothing to plot"
	}
	if len(res.Graphs.RodProfile) > 0 {
		temps := make([]float64, len(res.Graphs.RodProfile))
		for i, p := range res.Graphs.RodProfile {
			temps[i] = p.Y
		}
		return asciigraph.Plot(temps,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("rod temperature T1..T5 (°C)"))
	}

	var hExp, hTheo []float64
	for _, tr := range res.Graphs.Trials {
		if tr.HExp == nil || tr.HTheoretical == nil {
			continue
		}
		hExp = append(hExp, *tr.HExp)
		hTheo = append(hTheo, *tr.HTheoretical)
	}
	if len(hExp) == 0 {
		return "no trial has both h values"
	}
	if len(hExp) == 1 {
		hExp = append(hExp, hExp[0])
		hTheo = append(hTheo, hTheo[0])
	}
	return asciigraph.PlotMany([][]float64{hExp, hTheo},
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption("h per trial (W/m^2K): red experimental, blue correlation"))
}
