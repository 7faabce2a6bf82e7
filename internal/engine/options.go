package engine

import "github.com/agbru/matcalc/internal/matrix"

// ─────────────────────────────────────────────────────────────────────────────
// Algorithm Defaults
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultThreshold is the side length at or below which Strassen hands
	// sub-problems to the classical kernel.
	DefaultThreshold = matrix.DefaultThreshold

	// DefaultParallelDepth is the number of recursion levels run concurrently
	// by "strassen-par" when no depth is configured. Two levels give 49
	// independent leaves, enough to keep common core counts busy.
	DefaultParallelDepth = 2
)

// Options configures a multiplication.
type Options struct {
	// Threshold is the Strassen cut-off. If 0, DefaultThreshold is used.
	Threshold int
	// ParallelDepth is the number of concurrent recursion levels. Only the
	// parallel Strassen calculator honors it; if 0 it uses
	// DefaultParallelDepth.
	ParallelDepth int
	// ScratchLimit caps the Strassen scratch memory in bytes. Zero means no cap.
	ScratchLimit int64
}

// normalizeOptions returns a copy of opts with defaults filled in.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Threshold <= 0 {
		normalized.Threshold = DefaultThreshold
	}
	if normalized.ParallelDepth < 0 {
		normalized.ParallelDepth = 0
	}
	return normalized
}

// matrixOptions converts engine options to the matrix package form.
func (o Options) matrixOptions(parallelDepth int, reporter ProgressReporter) matrix.Options {
	return matrix.Options{
		Threshold:     o.Threshold,
		ParallelDepth: parallelDepth,
		ScratchLimit:  o.ScratchLimit,
		Reporter:      reporter,
	}
}
