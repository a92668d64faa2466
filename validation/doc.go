// Package validation checks configuration structs and store arguments.
//
// Struct tags are handled by go-playground/validator:
//
//	type InsertParams struct {
//	    Feed     string         `validate:"required"`
//	    Metadata map[string]any `validate:"required"`
//	}
//	err := validation.Precondition(params)
//
// Ad-hoc checks collect field errors before failing:
//
//	err := validation.New().Required("type", typ).Custom(ok, "expires_at", "too early").Precondition()
package validation
