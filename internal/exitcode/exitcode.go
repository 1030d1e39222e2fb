// Package exitcode maps errors onto consistent CLI exit codes.
package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/dayflow/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ProviderError indicates an AI provider failure (auth, rate limit, API)
	ProviderError = 3

	// StateError indicates corrupt or unreadable local state
	StateError = 4

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var dfErr *errors.DayflowError
	if stderrors.As(err, &dfErr) {
		switch {
		case strings.HasPrefix(string(dfErr.Code), "PROVIDER-"):
			return ProviderError
		case dfErr.Code == errors.ErrCodeSessionStoreCorrupt,
			dfErr.Code == errors.ErrCodeSessionStoreVersion,
			strings.HasPrefix(string(dfErr.Code), "HISTORY-"),
			strings.HasPrefix(string(dfErr.Code), "IO-"):
			return StateError
		case strings.HasPrefix(string(dfErr.Code), "PLAN-"),
			strings.HasPrefix(string(dfErr.Code), "CLARIFY-"):
			return UsageError
		}
	}

	return GeneralError
}
