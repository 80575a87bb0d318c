package importer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
	apperrors "Thermolab/internal/pkg/errors"
)

const MaxUploadSize = 10 << 20 // 10MB

type Calculator interface {
	Calculate(ctx context.Context, slug string, raw domain.RawInputs) (engine.Result, error)
}

type Handler struct {
	Calc Calculator
}

type ImportResult struct {
	Success bool             `json:"success"`
	Inputs  domain.RawInputs `json:"inputs"`
	Result  engine.Result    `json:"result"`
}

// Import serves POST /api/import/{slug} with the workbook in the "file"
// form field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("File required"))
		return
	}
	defer file.Close()

	inputs, err := Read(file, slug)
	switch {
	case errors.Is(err, ErrUnsupported):
		apperrors.WriteJSON(w, apperrors.NotFound("Experiment"))
		return
	case errors.Is(err, ErrEmptySheet), errors.Is(err, ErrNoHeader):
		apperrors.WriteJSON(w, apperrors.Unprocessable(err.Error()))
		return
	case err != nil:
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid file").WithError(err))
		return
	}

	res, err := h.Calc.Calculate(r.Context(), slug, inputs)
	if err != nil {
		apperrors.WriteJSON(w, engine.AsAppError(res, err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Success: true, Inputs: inputs, Result: res})
}
