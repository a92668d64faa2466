package cli

import (
	"github.com/kbukum/cassandrastore/errors"
)

// Exit codes follow sysexits(3) where one fits.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 64 // EX_USAGE
	ExitTransient = 75 // EX_TEMPFAIL
)

// ExitCode maps a command error to a process exit status. Cluster failures
// get ExitTransient so wrapper scripts can retry them.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsTransient(err):
		return ExitTransient
	case errors.IsPrecondition(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}
