package validation

import (
	"strings"

	"github.com/kbukum/cassandrastore/errors"
)

// Validator collects field errors from a chain of checks on call arguments.
// Struct-tag validation lives in Validate and Precondition.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Precondition returns a PRECONDITION_FAILED error if anything failed, nil
// otherwise. Stores use it for arguments they reject before any statement.
func (v *Validator) Precondition() error {
	if !v.HasErrors() {
		return nil
	}
	return build(errors.ErrCodePrecondition, v.errors)
}

// Required records an error when value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if value == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Custom records message for field when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

func build(code errors.ErrorCode, fieldErrors []FieldError) *errors.AppError {
	messages := make([]string, len(fieldErrors))
	for i, e := range fieldErrors {
		messages[i] = e.Field + ": " + e.Message
	}
	appErr := errors.New(code, strings.Join(messages, "; "))
	if len(fieldErrors) == 1 {
		appErr.WithDetail("field", fieldErrors[0].Field)
	}
	return appErr.WithDetail("fields", fieldErrors)
}
