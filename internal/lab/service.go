// Package lab runs calculations against stored experiment definitions and
// records student runs.
package lab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
	"Thermolab/internal/validator"
)

// ErrRunsDisabled is returned by SaveRun when no run store is configured.
var ErrRunsDisabled = errors.New("lab: saving runs requires a database")

// Experiments is where definitions and their constants come from.
type Experiments interface {
	engine.ConstantsSource
	List(ctx context.Context) ([]domain.Experiment, error)
	GetBySlug(ctx context.Context, slug string) (domain.Experiment, error)
}

// studentFields are form fields that describe the student, not readings.
var studentFields = []string{"student_name", "usn", "date", "instructor", "slug"}

type Service struct {
	exps   Experiments
	runs   repo.RunRepository
	engine *engine.Engine
	now    func() time.Time
}

// NewService wires a service. runs may be nil, which disables SaveRun.
func NewService(exps Experiments, runs repo.RunRepository) *Service {
	return &Service{exps: exps, runs: runs, engine: engine.New(exps), now: time.Now}
}

func (s *Service) Calculate(ctx context.Context, slug string, raw domain.RawInputs) (engine.Result, error) {
	res, err := s.engine.Calculate(ctx, slug, raw)
	log := logger.WithExperiment(slug)
	if err != nil {
		log.Warn("calculation failed", zap.String("error", res.Error), zap.Error(err))
		return res, err
	}
	fields := []zap.Field{zap.Int("warnings", len(res.Warnings))}
	if res.Convection != nil {
		fields = append(fields, zap.Int("trials", len(res.Convection.Results.Trials)))
	}
	log.Info("calculation done", fields...)
	return res, nil
}

func (s *Service) Experiments(ctx context.Context) ([]domain.Experiment, error) {
	return s.exps.List(ctx)
}

func (s *Service) Experiment(ctx context.Context, slug string) (domain.Experiment, error) {
	return s.exps.GetBySlug(ctx, slug)
}

// SaveRunRequest is the body of POST /api/save_run. FormData holds the
// student fields next to the readings.
type SaveRunRequest struct {
	Slug     string         `json:"slug" validate:"required"`
	FormData map[string]any `json:"formData" validate:"required"`
}

// Submission is a SaveRunRequest split into student details and readings.
type Submission struct {
	StudentName string `validate:"max=64"`
	USN         string `validate:"max=32"`
	Date        time.Time
	Inputs      domain.RawInputs
}

// Split separates the student fields from the readings. A missing or
// unreadable date becomes now.
func (req SaveRunRequest) Split(now time.Time) Submission {
	form := domain.RawInputs(req.FormData)
	sub := Submission{
		StudentName: form.String("student_name"),
		USN:         form.String("usn"),
		Date:        now.UTC(),
		Inputs:      make(domain.RawInputs, len(req.FormData)),
	}
	if sub.StudentName == "" {
		sub.StudentName = "Unknown"
	}
	if sub.USN == "" {
		sub.USN = "N/A"
	}
	if d := form.String("date"); d != "" {
		if t, err := time.Parse(validator.DateLayout, d); err == nil {
			sub.Date = t
		}
	}
	for k, v := range req.FormData {
		if !isStudentField(k) {
			sub.Inputs[k] = v
		}
	}
	return sub
}

func isStudentField(k string) bool {
	for _, f := range studentFields {
		if strings.EqualFold(k, f) {
			return true
		}
	}
	return false
}

// storedResults is the results column of a saved run.
type storedResults struct {
	Results    any      `json:"results"`
	Normalized any      `json:"normalized"`
	Warnings   []string `json:"warnings"`
	Trace      any      `json:"trace"`
}

// SaveRun recomputes the submission and stores it with its results.
func (s *Service) SaveRun(ctx context.Context, req SaveRunRequest) (int, error) {
	if s.runs == nil {
		return 0, ErrRunsDisabled
	}
	exp, err := s.exps.GetBySlug(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", engine.ErrConstantsNotFound, req.Slug)
		}
		return 0, err
	}
	sub := req.Split(s.now())
	if err := validator.Validate(sub); err != nil {
		return 0, err
	}

	res, err := engine.Evaluate(req.Slug, exp.Content.Constants, sub.Inputs)
	if err != nil {
		return 0, err
	}
	inputs, err := json.Marshal(res.RawInputs)
	if err != nil {
		return 0, fmt.Errorf("lab: encode inputs: %w", err)
	}
	results, err := json.Marshal(storedResults{
		Results:    res.Results,
		Normalized: res.Normalized,
		Warnings:   res.Warnings,
		Trace:      res.Trace,
	})
	if err != nil {
		return 0, fmt.Errorf("lab: encode results: %w", err)
	}

	id, err := s.runs.SaveRun(ctx, domain.Run{
		ExperimentID: exp.ID,
		StudentName:  sub.StudentName,
		USN:          sub.USN,
		Date:         sub.Date,
		Inputs:       inputs,
		Results:      results,
	})
	if err != nil {
		return 0, err
	}
	logger.WithExperiment(req.Slug).Info("run saved", zap.Int("run_id", id), zap.String("usn", sub.USN))
	return id, nil
}
