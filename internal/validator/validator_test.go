package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug  string `json:"slug" validate:"required"`
	Date  string `json:"date" validate:"isodate"`
	Title string `json:"title" validate:"omitempty,max=5"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	err := Validate(sample{Date: "19/10/2026", Title: "too long"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fields := Fields(err)
	assert.Equal(t, "is required", fields["slug"])
	assert.Equal(t, "must be a date in YYYY-MM-DD form", fields["date"])
	assert.Equal(t, "must be at most 5 characters", fields["title"])
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, Validate(sample{Slug: "x", Date: "2026-10-19"}))
	assert.NoError(t, Validate(sample{Slug: "x"}))
}
