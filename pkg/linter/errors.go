package linter

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRule is returned when a configuration names a rule that is not registered
	ErrUnknownRule = errors.New("unknown rule")
	// ErrUnknownSeverity is returned for severities other than error, warning and info
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrDuplicateRule is returned when two rules share an ID
	ErrDuplicateRule = errors.New("duplicate rule")
)

// ConfigError reports an unusable configuration value. It is fatal to a run.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	var cerr *ConfigError
	return errors.As(err, &cerr)
}
