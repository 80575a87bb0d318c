// Package engine dispatches a submission to the calculation for its
// experiment and assembles the response envelope: results, derivation
// steps, graph series and explanations.
package engine

import (
	"context"
	"errors"
	"fmt"

	"Thermolab/internal/calc/conduction"
	"Thermolab/internal/calc/convection"
	"Thermolab/internal/calc/explain"
	"Thermolab/internal/calc/tracefmt"
	"Thermolab/internal/domain"
)

var (
	ErrUnknownExperiment = errors.New("engine: unknown experiment")
	ErrConstantsNotFound = errors.New("engine: experiment not found")
)

// ConstantsSource resolves the constants of an experiment by slug. It
// returns an error wrapping ErrConstantsNotFound when there is no such
// experiment.
type ConstantsSource interface {
	Constants(ctx context.Context, slug string) (domain.Constants, error)
}

// Result is the envelope returned for one calculation. On failure only
// Slug and Error are set.
type Result struct {
	Slug       string           `json:"slug"`
	RawInputs  any              `json:"raw_inputs,omitempty"`
	Normalized any              `json:"normalized,omitempty"`
	Results    any              `json:"results,omitempty"`
	Trace      any              `json:"trace,omitempty"`
	Warnings   []string         `json:"warnings"`
	Suspects   []string         `json:"suspects"`
	Constants  domain.Constants `json:"constants,omitempty"`

	Steps      []tracefmt.Step       `json:"steps,omitempty"`
	TrialSteps []tracefmt.TrialSteps `json:"trial_steps,omitempty"`
	TraceTable []conduction.Row      `json:"trace_table,omitempty"`
	Graphs     *Graphs               `json:"graphs,omitempty"`

	ExplanationBlocks []explain.TrialBlock `json:"explanation_blocks,omitempty"`
	FinalExplanation  *explain.Summary     `json:"final_explanation,omitempty"`

	Error string `json:"error,omitempty"`

	Conduction *conduction.Output `json:"-"`
	Convection *convection.Output `json:"-"`
}

// Failed reports whether the envelope carries an error.
func (r Result) Failed() bool { return r.Error != "" }

// Slugs lists the experiments the engine can evaluate.
func Slugs() []string {
	return []string{domain.SlugThermalConductivity, domain.SlugNaturalConvection}
}

// Supported reports whether slug names a known calculation.
func Supported(slug string) bool {
	return slug == domain.SlugThermalConductivity || slug == domain.SlugNaturalConvection
}

// Engine runs calculations against constants from a source.
type Engine struct {
	src ConstantsSource
}

func New(src ConstantsSource) *Engine {
	return &Engine{src: src}
}

// Calculate resolves the constants for slug and evaluates raw. The returned
// Result always carries the error message when err is non-nil.
func (e *Engine) Calculate(ctx context.Context, slug string, raw domain.RawInputs) (Result, error) {
	if !Supported(slug) {
		return failure(slug, ErrUnknownExperiment), ErrUnknownExperiment
	}
	consts, err := e.src.Constants(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrConstantsNotFound) {
			return failure(slug, ErrConstantsNotFound), err
		}
		return failure(slug, err), fmt.Errorf("engine: load constants for %s: %w", slug, err)
	}
	return Evaluate(slug, consts, raw)
}

// Evaluate runs the calculation for slug with the given constants.
func Evaluate(slug string, consts domain.Constants, raw domain.RawInputs) (Result, error) {
	switch slug {
	case domain.SlugThermalConductivity:
		return rod(consts, raw), nil
	case domain.SlugNaturalConvection:
		out, err := convection.Calculate(consts, raw)
		if err != nil {
			return failure(slug, err), err
		}
		return tube(consts, out), nil
	}
	return failure(slug, ErrUnknownExperiment), ErrUnknownExperiment
}

func failure(slug string, err error) Result {
	return Result{Slug: slug, Error: message(err)}
}

// message is the user-facing text of a calculation error.
func message(err error) string {
	switch {
	case errors.Is(err, ErrUnknownExperiment):
		return "Unknown experiment"
	case errors.Is(err, ErrConstantsNotFound):
		return "Experiment not found"
	case errors.Is(err, convection.ErrNoTrials):
		return "No observation trials provided."
	}
	return err.Error()
}

func rod(consts domain.Constants, raw domain.RawInputs) Result {
	out := conduction.Calculate(consts, raw)
	return Result{
		Slug:       domain.SlugThermalConductivity,
		RawInputs:  out.RawInputs,
		Normalized: out.Normalized,
		Results:    out.Results,
		Trace:      out.Trace,
		Warnings:   out.Warnings,
		Suspects:   out.Suspects,
		Constants:  consts,
		Steps:      tracefmt.Conduction(out),
		TraceTable: conduction.TraceTable(out),
		Graphs:     rodGraphs(out),
		Conduction: &out,
	}
}

func tube(consts domain.Constants, out convection.Output) Result {
	summary := explain.Summarize(out.Results)
	return Result{
		Slug:              domain.SlugNaturalConvection,
		RawInputs:         out.RawInputs,
		Normalized:        out.Results,
		Results:           out.Results,
		Trace:             out.Results,
		Warnings:          out.Warnings,
		Suspects:          out.Suspects,
		Constants:         consts,
		TrialSteps:        tracefmt.Convection(out.Results),
		Graphs:            tubeGraphs(out.Results),
		ExplanationBlocks: explain.Trials(out.Results),
		FinalExplanation:  &summary,
		Convection:        &out,
	}
}
