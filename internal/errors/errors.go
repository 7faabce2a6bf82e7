// Package apperrors holds the error types of matcalc and the process exit
// codes they map to.
package apperrors

import "fmt"

// Exit codes of the matcalc process.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2 // -timeout elapsed
	ExitErrorMismatch = 3 // some product disagreed with the oracle
	ExitErrorConfig   = 4 // bad flag, variable, config file or matrix size
	ExitErrorResource = 5 // memory budget too small
	ExitErrorCanceled = 130
)

// ConfigError is a user mistake in flags, environment or config file.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// MultiplicationError attributes a failure to one algorithm and size.
type MultiplicationError struct {
	Algorithm string
	N         int
	Cause     error
}

func (e MultiplicationError) Error() string {
	return fmt.Sprintf("%s (%dx%d): %v", e.Algorithm, e.N, e.N, e.Cause)
}

func (e MultiplicationError) Unwrap() error { return e.Cause }

// NewMultiplicationError returns nil for a nil cause, so it can wrap the
// result of a call unconditionally.
func NewMultiplicationError(algorithm string, n int, cause error) error {
	if cause == nil {
		return nil
	}
	return MultiplicationError{Algorithm: algorithm, N: n, Cause: cause}
}

// ServerError is a failure of the metrics endpoint. Cause may be nil.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError wraps cause in a ServerError.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}
