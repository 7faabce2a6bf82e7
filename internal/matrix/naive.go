package matrix

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// DefaultTolerance is the absolute per-element tolerance used to accept a
// Strassen product against the naive oracle.
const DefaultTolerance = 1e-9

// MultiplyNaive returns a·b computed with a plain triple loop over the whole
// matrices. It is the correctness oracle for every other multiplier and never
// recurses.
func MultiplyNaive[T constraints.Float](a, b *Dense[T]) (*Dense[T], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrNullBuffer)
	}
	if a.N != b.N {
		return nil, fmt.Errorf("%w: %dx%d · %dx%d", ErrDimensionMismatch, a.N, a.N, b.N, b.N)
	}
	n := a.N
	c := New[T](n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum T
			for k := 0; k < n; k++ {
				sum += a.Data[i*n+k] * b.Data[k*n+j]
			}
			c.Data[i*n+j] = sum
		}
	}
	return c, nil
}

// Comparison is the outcome of an element-wise comparison of two matrices.
type Comparison struct {
	// Equal is true when every element pair differs by at most the tolerance.
	Equal bool
	// MaxAbsDiff is the largest absolute difference seen. It is +Inf when a
	// NaN was involved.
	MaxAbsDiff float64
	// Row and Col locate the first element exceeding the tolerance, or -1.
	Row, Col int
}

// Compare checks got against want element-wise with an absolute tolerance.
// NaN never compares equal to anything, including another NaN.
func Compare[T constraints.Float](got, want *Dense[T], tol float64) (Comparison, error) {
	if got == nil || want == nil {
		return Comparison{}, fmt.Errorf("%w: nil operand", ErrNullBuffer)
	}
	if got.N != want.N || len(got.Data) != len(want.Data) {
		return Comparison{}, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, got.N, got.N, want.N, want.N)
	}
	res := Comparison{Equal: true, Row: -1, Col: -1}
	for idx := range got.Data {
		diff := math.Abs(float64(got.Data[idx]) - float64(want.Data[idx]))
		if math.IsNaN(diff) {
			diff = math.Inf(1)
		}
		if diff > res.MaxAbsDiff {
			res.MaxAbsDiff = diff
		}
		if diff > tol && res.Equal {
			res.Equal = false
			res.Row, res.Col = idx/got.N, idx%got.N
		}
	}
	return res, nil
}

// EqualWithin reports whether got and want have the same shape and agree
// element-wise within tol.
func EqualWithin[T constraints.Float](got, want *Dense[T], tol float64) bool {
	res, err := Compare(got, want, tol)
	return err == nil && res.Equal
}
