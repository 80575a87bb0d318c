package engine

import (
	"errors"
	"net/http"

	"Thermolab/internal/calc/convection"
	apperrors "Thermolab/internal/pkg/errors"
)

// AsAppError maps a failed calculation to the HTTP error returned to the
// caller. The envelope message is kept as the user-facing text.
func AsAppError(res Result, err error) *apperrors.AppError {
	msg := res.Error
	if msg == "" {
		msg = message(err)
	}
	switch {
	case errors.Is(err, ErrUnknownExperiment), errors.Is(err, ErrConstantsNotFound):
		return apperrors.New(apperrors.CodeNotFound, msg, http.StatusNotFound).WithError(err)
	case errors.Is(err, convection.ErrNoTrials):
		return apperrors.Unprocessable(msg).WithError(err)
	}
	return apperrors.Internal("calculation failed").WithError(err)
}
