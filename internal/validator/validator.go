// Package validator checks request payloads against their struct tags.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// V is the singleton validator instance.
var V *validator.Validate

func init() {
	V = validator.New()
	V.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	V.RegisterValidation("isodate", isoDate)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validate returns ValidationErrors when v fails its tags.
func Validate(v any) error {
	if err := V.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		out = append(out, ValidationError{Field: e.Field(), Message: message(e)})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "email":
		return "must be a valid email address"
	case "isodate":
		return "must be a date in YYYY-MM-DD form"
	}
	return fmt.Sprintf("failed validation: %s", e.Tag())
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	_, ok := err.(ValidationErrors)
	return ok
}

// Fields maps each failing field to its message.
func Fields(err error) map[string]string {
	errs, ok := err.(ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}
