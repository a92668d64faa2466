// Package errors provides the unified error type used by the stores.
// It classifies failures into a small set of codes (transient storage,
// precondition, decode, not found) and records whether the caller may
// retry the operation.
package errors
