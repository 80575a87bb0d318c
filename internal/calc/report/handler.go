package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/domain"
	apperrors "Thermolab/internal/pkg/errors"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/validator"
)

// Calculator evaluates a submission.
type Calculator interface {
	Calculate(ctx context.Context, slug string, raw domain.RawInputs) (engine.Result, error)
}

// Request is the body of POST /api/report/{slug}.
type Request struct {
	StudentName string           `json:"student_name" validate:"max=120"`
	USN         string           `json:"usn" validate:"max=40"`
	Date        string           `json:"date" validate:"isodate"`
	Instructor  string           `json:"instructor" validate:"max=120"`
	Inputs      domain.RawInputs `json:"inputs"`
}

type Handler struct {
	Calc Calculator
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.ValidationFields(err.Error(), validator.Fields(err)))
		return
	}

	res, err := h.Calc.Calculate(r.Context(), slug, req.Inputs)
	if err != nil {
		apperrors.WriteJSON(w, engine.AsAppError(res, err))
		return
	}

	pdf, err := Bytes(Header{
		StudentName: req.StudentName,
		USN:         req.USN,
		Date:        req.Date,
		Instructor:  req.Instructor,
	}, res)
	if err != nil {
		logger.Error("report generation failed", zap.String("experiment", slug), zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Internal("Report generation error"))
		return
	}

	name := fmt.Sprintf("%s-%s.pdf", slug, uuid.NewString()[:8])
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(pdf)
}
