package matrix

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// MultiplyClassical computes c = a·b for n×n views using the direct O(n³)
// definition. Each view may carry its own stride. It performs no allocation
// and writes exactly n² elements of c; n == 0 is a no-op.
//
// The views must not overlap c. Bounds are the caller's responsibility; use
// Multiply for a checked entry point.
func MultiplyClassical[T constraints.Float](a, b, c View[T], n int) {
	for i := 0; i < n; i++ {
		rowA := a.Row(i, n)
		rowC := c.Row(i, n)
		for j := 0; j < n; j++ {
			var sum T
			col := b.Off + j
			for k := 0; k < n; k++ {
				sum += rowA[k] * b.Data[col]
				col += b.Stride
			}
			rowC[j] = sum
		}
	}
}

// MultiplyRect computes dest = a·b where a is m×k and b is k×p, all packed
// row-major. dest must hold m·p elements.
func MultiplyRect[T constraints.Float](a, b, dest []T, m, k, p int) error {
	if m < 0 || k < 0 || p < 0 {
		return invalidSizef("negative dimensions %dx%d · %dx%d", m, k, k, p)
	}
	if len(a) < m*k || len(b) < k*p || len(dest) < m*p {
		return fmt.Errorf("%w: %dx%d · %dx%d needs len(a)=%d len(b)=%d len(dest)=%d, got %d, %d, %d",
			ErrDimensionMismatch, m, k, k, p, m*k, k*p, m*p, len(a), len(b), len(dest))
	}

	aBase := 0
	destBase := 0
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			var sum T
			bBase := 0
			for x := 0; x < k; x++ {
				sum += a[aBase+x] * b[bBase+j]
				bBase += p
			}
			dest[destBase+j] = sum
		}
		destBase += p
		aBase += k
	}
	return nil
}
