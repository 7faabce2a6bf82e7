package matrix

import (
	"context"
	"fmt"

	"golang.org/x/exp/constraints"
)

// MultiplyDense returns a·b for two owned matrices of any side length.
// Sizes rejected by IsValidSize are zero-padded to PaddedSize before the
// recursion and the result is cropped back to a.N.
func MultiplyDense[T constraints.Float](ctx context.Context, a, b *Dense[T], opts Options) (*Dense[T], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrNullBuffer)
	}
	if a.N != b.N {
		return nil, fmt.Errorf("%w: %dx%d · %dx%d", ErrDimensionMismatch, a.N, a.N, b.N, b.N)
	}
	n := a.N
	threshold := opts.threshold()
	p := PaddedSize(n, threshold)
	if p == n {
		c := New[T](n)
		if err := Multiply(ctx, a.View(), b.View(), c.View(), n, opts); err != nil {
			return nil, err
		}
		return c, nil
	}

	pa, pb := a.Pad(p), b.Pad(p)
	pc := New[T](p)
	if err := Multiply(ctx, pa.View(), pb.View(), pc.View(), p, opts); err != nil {
		return nil, err
	}
	return pc.Crop(n), nil
}
