package engine

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/agbru/matcalc/internal/matrix"
)

// ─────────────────────────────────────────────────────────────────────────────
// Naive
// ─────────────────────────────────────────────────────────────────────────────

// NaiveMultiplier is the whole-matrix triple loop. It is the oracle every
// other algorithm is compared against.
type NaiveMultiplier struct{}

// Name returns "naive".
func (NaiveMultiplier) Name() string { return "naive" }

// MultiplyCore runs the triple loop row by row so cancellation is noticed
// between rows.
func (NaiveMultiplier) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, _ Options) (*matrix.Matrix, error) {
	n := a.N
	c := matrix.New[float32](n)
	last := 0.0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// A single row is an n×n · n×n product restricted to one output row.
		if err := matrix.MultiplyRect(a.Data[i*n:(i+1)*n], b.Data, c.Data[i*n:(i+1)*n], 1, n, n); err != nil {
			return nil, err
		}
		if p := float64(i+1) / float64(n); p-last >= matrix.ProgressReportThreshold {
			reporter(p)
			last = p
		}
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Strassen
// ─────────────────────────────────────────────────────────────────────────────

// StrassenMultiplier is the sequential Strassen recursion. Sizes that do
// not halve cleanly down to the threshold are zero-padded and the result is
// cropped.
type StrassenMultiplier struct{}

// Name returns "strassen".
func (StrassenMultiplier) Name() string { return "strassen" }

// MultiplyCore runs Strassen on the calling goroutine.
func (StrassenMultiplier) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	return matrix.MultiplyDense(ctx, a, b, opts.matrixOptions(0, reporter))
}

// ParallelStrassenMultiplier runs the seven products of the top recursion
// levels concurrently.
type ParallelStrassenMultiplier struct{}

// Name returns "strassen-par".
func (ParallelStrassenMultiplier) Name() string { return "strassen-par" }

// MultiplyCore runs Strassen with opts.ParallelDepth concurrent levels.
func (ParallelStrassenMultiplier) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	depth := opts.ParallelDepth
	if depth == 0 {
		depth = DefaultParallelDepth
	}
	return matrix.MultiplyDense(ctx, a, b, opts.matrixOptions(depth, reporter))
}

// ─────────────────────────────────────────────────────────────────────────────
// Gonum
// ─────────────────────────────────────────────────────────────────────────────

// GonumMultiplier delegates to gonum's float64 Dense.Mul and rounds the
// result back to float32. It is an independent reference implementation.
type GonumMultiplier struct{}

// Name returns "gonum".
func (GonumMultiplier) Name() string { return "gonum" }

// MultiplyCore converts, multiplies and converts back.
func (GonumMultiplier) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, _ Options) (*matrix.Matrix, error) {
	n := a.N
	c := matrix.New[float32](n)
	if n == 0 {
		return c, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prod mat.Dense
	prod.Mul(toGonum(a), toGonum(b))
	reporter(0.9)

	raw := prod.RawMatrix()
	for i := 0; i < n; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+n]
		for j, x := range row {
			c.Data[i*n+j] = float32(x)
		}
	}
	return c, nil
}

func toGonum(m *matrix.Matrix) *mat.Dense {
	data := make([]float64, len(m.Data))
	for i, x := range m.Data {
		data[i] = float64(x)
	}
	return mat.NewDense(m.N, m.N, data)
}

// GFLOPS returns the classical floating point rate for an n×n product that
// took seconds: 2n³ operations.
func GFLOPS(n int, seconds float64) float64 {
	if seconds <= 0 {
		return math.Inf(1)
	}
	fn := float64(n)
	return 2 * fn * fn * fn / seconds / 1e9
}
