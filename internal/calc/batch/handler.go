package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "Thermolab/internal/pkg/errors"
	"Thermolab/internal/validator"
)

type Handler struct {
	Svc Calculator
}

// Calc serves POST /api/batch.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	if err := validator.Validate(input); err != nil {
		apperrors.WriteJSON(w, apperrors.ValidationFields(err.Error(), validator.Fields(err)))
		return
	}
	res, err := Calculate(r.Context(), h.Svc, input)
	if errors.Is(err, ErrNoItems) || errors.Is(err, ErrTooLarge) {
		apperrors.WriteJSON(w, apperrors.Validation(err.Error()))
		return
	}
	if err != nil {
		apperrors.WriteJSON(w, apperrors.Internal("Batch interrupted").WithError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
