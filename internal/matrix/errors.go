package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the multipliers. Callers should match them with
// errors.Is, since they are usually wrapped with the offending sizes.
var (
	// ErrInvalidSize is returned for negative sizes and for sizes that do not
	// halve cleanly down to the recursion threshold.
	ErrInvalidSize = errors.New("matrix: invalid size")
	// ErrNullBuffer is returned when a view has no backing data or its backing
	// slice is too short for the requested size and stride.
	ErrNullBuffer = errors.New("matrix: null or short buffer")
	// ErrScratchExhausted is returned when the scratch space needed by the
	// recursion exceeds the configured budget.
	ErrScratchExhausted = errors.New("matrix: scratch budget exhausted")
	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")
)

func invalidSizef(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSize, fmt.Sprintf(format, a...))
}

func nullBufferf(name string, v viewShape, n int) error {
	return fmt.Errorf("%w: %s (len=%d, off=%d, stride=%d) cannot hold %dx%d",
		ErrNullBuffer, name, v.length, v.off, v.stride, n, n)
}

// viewShape is the type-independent part of a View used in error messages.
type viewShape struct {
	length, off, stride int
}
