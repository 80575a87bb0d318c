package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the form date format.
const DateLayout = "2006-01-02"

// isoDate accepts an empty string or a YYYY-MM-DD date.
func isoDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
