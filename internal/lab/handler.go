package lab

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"Thermolab/internal/calc/convection"
	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
	apperrors "Thermolab/internal/pkg/errors"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
	"Thermolab/internal/validator"
)

type CalculateRequest struct {
	Slug   string           `json:"slug" validate:"required"`
	Inputs domain.RawInputs `json:"inputs"`
}

// CalculateResponse is the envelope with the success flag the forms expect.
type CalculateResponse struct {
	Success bool `json:"success"`
	engine.Result
}

type Handler struct {
	Svc *Service
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Calculate serves POST /api/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.ValidationFields(err.Error(), validator.Fields(err)))
		return
	}
	res, err := h.Svc.Calculate(r.Context(), req.Slug, req.Inputs)
	if err != nil {
		apperrors.WriteJSON(w, engine.AsAppError(res, err))
		return
	}
	writeJSON(w, http.StatusOK, CalculateResponse{Success: true, Result: res})
}

// SaveRun serves POST /api/save_run.
func (h *Handler) SaveRun(w http.ResponseWriter, r *http.Request) {
	var req SaveRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.ValidationFields(err.Error(), validator.Fields(err)))
		return
	}
	id, err := h.Svc.SaveRun(r.Context(), req)
	if err != nil {
		apperrors.WriteJSON(w, saveError(req.Slug, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func saveError(slug string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrRunsDisabled):
		return apperrors.New("UNAVAILABLE", "Saving runs is disabled on this server", http.StatusServiceUnavailable)
	case validator.IsValidationError(err):
		return apperrors.ValidationFields(err.Error(), validator.Fields(err))
	case errors.Is(err, engine.ErrUnknownExperiment), errors.Is(err, engine.ErrConstantsNotFound), errors.Is(err, convection.ErrNoTrials):
		return engine.AsAppError(engine.Result{}, err)
	}
	logger.WithExperiment(slug).Error("save run failed", zap.Error(err))
	return apperrors.Internal("Could not save run").WithError(err)
}

// List serves GET /api/experiments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Experiments(r.Context())
	if err != nil {
		logger.Error("list experiments failed", zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Internal("Could not load experiments"))
		return
	}
	if list == nil {
		list = []domain.Experiment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get serves GET /api/experiments/{slug}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	exp, err := h.Svc.Experiment(r.Context(), slug)
	if errors.Is(err, repo.ErrNotFound) {
		apperrors.WriteJSON(w, apperrors.NotFound("Experiment"))
		return
	}
	if err != nil {
		logger.WithExperiment(slug).Error("load experiment failed", zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Internal("Could not load experiment"))
		return
	}
	writeJSON(w, http.StatusOK, exp)
}
