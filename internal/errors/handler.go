package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/matcalc/internal/matrix"
)

// ColorProvider supplies the highlight color. It lets this package print
// colored status lines without depending on the ui package.
type ColorProvider interface {
	Yellow() string
	Reset() string
}

type plainColors struct{}

func (plainColors) Yellow() string { return "" }
func (plainColors) Reset() string  { return "" }

// ExitCodeFor classifies err into a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, matrix.ErrScratchExhausted):
		return ExitErrorResource
	case errors.As(err, &cfgErr),
		errors.Is(err, matrix.ErrInvalidSize),
		errors.Is(err, matrix.ErrDimensionMismatch):
		return ExitErrorConfig
	}
	return ExitErrorGeneric
}

// HandleCalculationError prints one status line for err to out and returns
// its exit code. elapsed is shown for timeouts and cancellations when
// positive. colors may be nil.
func HandleCalculationError(err error, elapsed time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCodeFor(err)
	if code == ExitSuccess {
		return code
	}
	if colors == nil {
		colors = plainColors{}
	}
	after := ""
	if elapsed > 0 {
		after = " after " + colors.Yellow() + elapsed.String() + colors.Reset()
	}

	var line string
	switch code {
	case ExitErrorTimeout:
		line = "Status: Failure (Timeout). The execution limit was reached" + after + "."
	case ExitErrorCanceled:
		line = colors.Yellow() + "Status: Canceled" + after + "." + colors.Reset()
	case ExitErrorResource:
		line = fmt.Sprintf("Status: Failure (Resources). %v", err)
	case ExitErrorConfig:
		line = fmt.Sprintf("Status: Failure (Invalid input). %v", err)
	default:
		line = fmt.Sprintf("Status: Failure. An unexpected error occurred: %v", err)
	}
	fmt.Fprintln(out, line)
	return code
}
