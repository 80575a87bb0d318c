package preview

import (
	"encoding/json"
	"net/http"

	apperrors "Thermolab/internal/pkg/errors"
)

type Handler struct{}

// Simulate serves POST /api/simulate.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	res, err := Calculate(in)
	if err != nil {
		apperrors.WriteJSON(w, apperrors.Validation(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
