package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with structured logging
//
// Usage in defer statements:
//
//	func recheck() error {
//	    defer observability.RecoverPanic(logger, "watch re-check")
//	    // ... code that might panic
//	}
//
// After logging, the panic is NOT re-raised and the function returns normally.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// MustRecover converts a recovered panic value into an error
//
// Usage when you want to convert panics to errors:
//
//	func check() (findings []Finding, err error) {
//	    defer func() {
//	        if perr := observability.MustRecover(recover()); perr != nil {
//	            err = perr
//	        }
//	    }()
//	    // ... code that might panic
//	}
//
// If r is nil, MustRecover returns nil. The stack trace is not included in
// the error.
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
