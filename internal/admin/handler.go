// Package admin serves the instructor dashboard: usage counts, saved runs
// and editing of experiment definitions.
package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"Thermolab/internal/auth"
	"Thermolab/internal/domain"
	apperrors "Thermolab/internal/pkg/errors"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
	"Thermolab/internal/validator"
)

type Handler struct {
	Exps repo.ExperimentRepository
	Runs repo.RunRepository
}

// ExperimentRequest is the body for creating or editing an experiment.
// Content is the definition document as JSON.
type ExperimentRequest struct {
	Slug    string          `json:"slug" validate:"required,max=64"`
	Title   string          `json:"title" validate:"required,max=128"`
	Content json.RawMessage `json:"content_json" validate:"required"`
}

type Dashboard struct {
	Stats       domain.Stats        `json:"stats"`
	Experiments []domain.Experiment `json:"experiments"`
}

// DefaultContent is the starting document offered for a new experiment.
var DefaultContent = domain.Content{
	Aim:       "Aim...",
	Apparatus: "...",
	Theory:    "...",
	Procedure: []string{"Step 1"},
	Inputs:    []domain.InputSpec{},
	Constants: domain.Constants{},
	Viva:      []domain.Viva{},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	fields := []zap.Field{zap.Error(err)}
	if in, ok := auth.InstructorFrom(r.Context()); ok {
		fields = append(fields, zap.String("instructor", in.Login))
	}
	logger.Error(msg, fields...)
	apperrors.WriteJSON(w, apperrors.Internal(msg))
}

// Dashboard serves GET /admin/.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	exps, err := h.Exps.List(r.Context())
	if err != nil {
		h.internal(w, r, "list experiments failed", err)
		return
	}
	runs, err := h.Runs.CountRuns(r.Context())
	if err != nil {
		h.internal(w, r, "count runs failed", err)
		return
	}
	if exps == nil {
		exps = []domain.Experiment{}
	}
	writeJSON(w, http.StatusOK, Dashboard{
		Stats:       domain.Stats{TotalExperiments: len(exps), TotalRuns: runs},
		Experiments: exps,
	})
}

// ListRuns serves GET /admin/runs?slug=&limit=.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.Runs.ListRuns(r.Context(), r.URL.Query().Get("slug"), limit)
	if err != nil {
		h.internal(w, r, "list runs failed", err)
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Template serves GET /admin/experiments/template.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DefaultContent)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exp, err := h.Exps.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		apperrors.WriteJSON(w, apperrors.NotFound("Experiment"))
		return
	}
	if err != nil {
		h.internal(w, r, "load experiment failed", err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// Create serves POST /admin/experiments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	exp, ok := decodeExperiment(w, r)
	if !ok {
		return
	}
	id, err := h.Exps.Create(r.Context(), exp)
	if errors.Is(err, repo.ErrDuplicate) {
		apperrors.WriteJSON(w, apperrors.Conflict("An experiment with this slug already exists"))
		return
	}
	if err != nil {
		h.internal(w, r, "create experiment failed", err)
		return
	}
	logger.WithExperiment(exp.Slug).Info("experiment created", zap.Int("id", id))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

// Update serves PUT /admin/experiments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exp, ok := decodeExperiment(w, r)
	if !ok {
		return
	}
	exp.ID = id
	err := h.Exps.Update(r.Context(), exp)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		apperrors.WriteJSON(w, apperrors.NotFound("Experiment"))
		return
	case errors.Is(err, repo.ErrDuplicate):
		apperrors.WriteJSON(w, apperrors.Conflict("An experiment with this slug already exists"))
		return
	case err != nil:
		h.internal(w, r, "update experiment failed", err)
		return
	}
	logger.WithExperiment(exp.Slug).Info("experiment updated", zap.Int("id", id))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid experiment id"))
		return 0, false
	}
	return id, true
}

// decodeExperiment reads an ExperimentRequest. Unknown keys in the content
// document are rejected.
func decodeExperiment(w http.ResponseWriter, r *http.Request) (domain.Experiment, bool) {
	var req ExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return domain.Experiment{}, false
	}
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.ValidationFields(err.Error(), validator.Fields(err)))
		return domain.Experiment{}, false
	}
	var content domain.Content
	dec := json.NewDecoder(bytes.NewReader(req.Content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&content); err != nil {
		apperrors.WriteJSON(w, apperrors.Validation("Invalid JSON format in content field.").WithDetail("content_json", err.Error()))
		return domain.Experiment{}, false
	}
	return domain.Experiment{Slug: req.Slug, Title: req.Title, Content: content}, true
}
