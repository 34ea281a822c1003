package cli

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/cstyle/pkg/report"
)

var errWorkers = errors.New("must be at least 1")

// ExitError carries a process exit code out of a command. Err is nil when
// the code is the whole story, e.g. a run that produced findings.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError reports a bad flag, path or configuration value
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// exitCode maps an error returned by a command to a process exit code.
// Errors that are not ExitErrors come from flag parsing, configuration or
// I/O and exit with report.ExitUsage.
func exitCode(err error) int {
	if err == nil {
		return report.ExitClean
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return report.ExitUsage
}
