package cassandra

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/gocql/gocql"

	"github.com/kbukum/cassandrastore/errors"
)

// nonRetryableCodes are server errors that repeat on every attempt.
var nonRetryableCodes = map[int]bool{
	gocql.ErrCodeSyntax:        true,
	gocql.ErrCodeUnauthorized:  true,
	gocql.ErrCodeInvalid:       true,
	gocql.ErrCodeCredentials:   true,
	gocql.ErrCodeConfig:        true,
	gocql.ErrCodeAlreadyExists: true,
}

// IsRetryable reports whether a driver error is likely to succeed on a later
// attempt: unavailable replicas, timeouts, overload and network failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var reqErr gocql.RequestError
	if stderrors.As(err, &reqErr) {
		return !nonRetryableCodes[reqErr.Code()]
	}
	return true
}

// Reason classifies a driver error for logs and error details.
func Reason(err error) string {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, gocql.ErrTimeoutNoResponse):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, gocql.ErrNoConnections), stderrors.Is(err, gocql.ErrConnectionClosed):
		return "no_connection"
	case stderrors.Is(err, gocql.ErrSessionClosed):
		return "session_closed"
	}
	var reqErr gocql.RequestError
	if stderrors.As(err, &reqErr) {
		switch reqErr.Code() {
		case gocql.ErrCodeUnavailable:
			return "unavailable"
		case gocql.ErrCodeReadTimeout, gocql.ErrCodeWriteTimeout:
			return "timeout"
		case gocql.ErrCodeOverloaded, gocql.ErrCodeBootstrapping:
			return "overloaded"
		default:
			return "request"
		}
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return "network"
	}
	return "unknown"
}

// FromCassandra converts a driver error into a TRANSIENT_STORAGE AppError.
// operation names the store operation and statement the query shape; neither
// carries bound values. An AppError passes through unchanged.
func FromCassandra(operation, statement string, err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	appErr := errors.TransientStorage(operation, statement, err)
	appErr.Retryable = IsRetryable(err)
	return appErr.WithDetail("reason", Reason(err))
}
