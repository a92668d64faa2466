package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Storage errors
const (
	// ErrCodeTransientStorage indicates the cluster could not serve the request
	// (unreachable, timeout, quorum not met).
	ErrCodeTransientStorage ErrorCode = "TRANSIENT_STORAGE"
	// ErrCodeConnectionFailed indicates no connection to the cluster could be established.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDecode indicates a stored value could not be decoded.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
)

// Validation errors
const (
	// ErrCodePrecondition indicates an argument violated an operation precondition.
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransientStorage: true,
	ErrCodeConnectionFailed: true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
