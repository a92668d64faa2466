package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by the stores.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates whether the caller may retry the operation.
	// The stores themselves never retry.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError carrying the same code.
// This lets callers match on code with errors.Is(err, errors.ErrTransient).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels for errors.Is matching by code.
var (
	ErrTransient    = &AppError{Code: ErrCodeTransientStorage}
	ErrPrecondition = &AppError{Code: ErrCodePrecondition}
	ErrNotFound     = &AppError{Code: ErrCodeNotFound}
	ErrDecode       = &AppError{Code: ErrCodeDecode}
)

// --- Common Error Constructors ---

// TransientStorage creates an error for a failed cluster call.
// operation names the store operation, statement the query shape.
func TransientStorage(operation, statement string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeTransientStorage,
		Message:   fmt.Sprintf("storage operation %s failed", operation),
		Retryable: true,
		Details: map[string]any{
			"operation": operation,
			"statement": statement,
		},
		Cause: cause,
	}
}

// ConnectionFailed creates an error for a failed connection to the cluster.
func ConnectionFailed(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("unable to connect to %s", target),
		Retryable: true, Details: map[string]any{"target": target}, Cause: cause,
	}
}

// NotFound creates an error for a record that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		Retryable: false, Details: details,
	}
}

// Decode creates an error for a stored value that could not be decoded.
func Decode(column string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDecode, Message: fmt.Sprintf("cannot decode column %s", column),
		Retryable: false, Details: map[string]any{"column": column}, Cause: cause,
	}
}

// Precondition creates an error for an argument rejected before any network call.
func Precondition(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodePrecondition, Message: fmt.Sprintf("precondition failed: %s", reason),
		Retryable: false, Details: details,
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Retryable: false, Cause: cause,
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsTransient reports whether err is a cluster-level failure the caller may retry.
func IsTransient(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// IsPrecondition reports whether err was a precondition rejection.
func IsPrecondition(err error) bool {
	return stderrors.Is(err, ErrPrecondition)
}
