package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visitForm struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	Email     string `json:"email" validate:"omitempty,email"`
	Outcome   string `json:"outcome" validate:"omitempty,oneof=completed skipped"`
	Name      string `json:"name" validate:"required,max=5"`
	Internal  string `json:"-" validate:"omitempty,min=2"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&visitForm{Email: "nope", Outcome: "cancelled", Name: "too long name"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "patient_id is required", fields["patient_id"])
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "outcome must be one of: completed, skipped", fields["outcome"])
	assert.Equal(t, "name must be at most 5 characters", fields["name"])
}

type walkInForm struct {
	Name       string `json:"name" validate:"required,notblank"`
	Department string `json:"department" validate:"required,notblank"`
}

func TestNotBlank_RejectsWhitespace(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&walkInForm{Name: "   ", Department: "\t\n"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "department is required", fields["department"])

	assert.NoError(t, v.Validate(&walkInForm{Name: " Asha ", Department: "ENT"}))
}

func TestValidate_Passes(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&visitForm{PatientID: 1, Name: "Asha"}))
	assert.Empty(t, v.FormatValidationErrors(nil))
}
