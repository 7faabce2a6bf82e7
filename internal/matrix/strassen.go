package matrix

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the side length at or below which the recursion stops
// and the classical kernel is used.
const DefaultThreshold = 16

// ProgressReportThreshold is the minimum change in progress (0.0 to 1.0)
// between two reports.
const ProgressReportThreshold = 0.01

// Options tunes a Strassen multiplication. The zero value is the baseline
// sequential algorithm with DefaultThreshold and no scratch budget.
type Options struct {
	// Threshold is the largest sub-problem handled by the classical kernel.
	// Zero selects DefaultThreshold.
	Threshold int
	// ParallelDepth is the number of top recursion levels whose seven
	// products run concurrently. Zero keeps the whole recursion on the
	// calling goroutine.
	ParallelDepth int
	// ScratchLimit caps the peak scratch memory in bytes. Zero means no cap.
	ScratchLimit int64
	// Reporter, if set, receives normalized progress values as leaf
	// multiplications complete. It may be called from several goroutines
	// when ParallelDepth > 0, but never concurrently.
	Reporter func(progress float64)
}

func (o Options) threshold() int {
	if o.Threshold <= 0 {
		return DefaultThreshold
	}
	return o.Threshold
}

// IsValidSize reports whether n halves evenly at every recursion level until
// it drops to the threshold, which is what Multiply requires.
func IsValidSize(n, threshold int) bool {
	if n < 0 {
		return false
	}
	for n > threshold {
		if n%2 != 0 {
			return false
		}
		n /= 2
	}
	return true
}

// PaddedSize returns the smallest p >= n accepted by IsValidSize, i.e. the
// smallest t·2^k >= n with t <= threshold.
func PaddedSize(n, threshold int) int {
	if n <= threshold {
		return n
	}
	k := 0
	for (n+(1<<k)-1)>>k > threshold {
		k++
	}
	t := (n + (1 << k) - 1) >> k
	return t << k
}

// recursionLevels returns how many times n is halved before reaching the
// threshold.
func recursionLevels(n, threshold int) int {
	levels := 0
	for n > threshold {
		n /= 2
		levels++
	}
	return levels
}

// Multiply computes c = a·b for n×n views with Strassen's algorithm, falling
// back to MultiplyClassical for sub-problems of side <= opts.Threshold.
//
// Views keep their own strides; top-level callers pass stride n. n must
// satisfy IsValidSize, otherwise ErrInvalidSize is returned and c is left
// untouched. The operation is synchronous unless opts.ParallelDepth > 0; in
// both cases it returns only once c is fully written. ctx is checked once per
// recursive activation.
func Multiply[T constraints.Float](ctx context.Context, a, b, c View[T], n int, opts Options) error {
	threshold := opts.threshold()
	if n < 0 {
		return invalidSizef("negative side length %d", n)
	}
	if !IsValidSize(n, threshold) {
		return invalidSizef("side length %d does not halve evenly down to threshold %d (pad to %d)",
			n, threshold, PaddedSize(n, threshold))
	}
	if !a.Fits(n) {
		return nullBufferf("a", a.shape(), n)
	}
	if !b.Fits(n) {
		return nullBufferf("b", b.shape(), n)
	}
	if !c.Fits(n) {
		return nullBufferf("c", c.shape(), n)
	}
	if opts.ParallelDepth < 0 {
		return fmt.Errorf("matrix: negative parallel depth %d", opts.ParallelDepth)
	}
	if opts.ScratchLimit > 0 {
		need := PeakScratch(n, threshold, opts.ParallelDepth) * elemSize[T]()
		if need > opts.ScratchLimit {
			return fmt.Errorf("%w: %dx%d needs %d bytes, limit is %d",
				ErrScratchExhausted, n, n, need, opts.ScratchLimit)
		}
	}

	r := &strassenRun[T]{
		threshold:     threshold,
		parallelDepth: opts.ParallelDepth,
		progress:      newLeafTracker(n, threshold, opts.Reporter),
	}
	return r.multiply(ctx, a, b, c, n, 0)
}

// strassenRun carries the per-call settings through the recursion.
type strassenRun[T constraints.Float] struct {
	threshold     int
	parallelDepth int
	progress      *leafTracker
}

// combineOp selects how an operand of a product is formed.
type combineOp int

const (
	opNone combineOp = iota // use x directly, no copy
	opAdd                   // x + y into a packed temporary
	opSub                   // x - y into a packed temporary
)

// operand describes one factor of a Strassen product.
type operand[T constraints.Float] struct {
	x, y View[T]
	op   combineOp
}

// form returns the view to multiply for this operand. Sums and differences
// are written into tmp (packed, stride m) by a strided-read, packed-write
// loop; plain quadrants are passed through without copying.
func (o operand[T]) form(tmp View[T], m int) View[T] {
	switch o.op {
	case opAdd:
		for i := 0; i < m; i++ {
			rx, ry, rt := o.x.Row(i, m), o.y.Row(i, m), tmp.Row(i, m)
			for j := range rt {
				rt[j] = rx[j] + ry[j]
			}
		}
		return tmp
	case opSub:
		for i := 0; i < m; i++ {
			rx, ry, rt := o.x.Row(i, m), o.y.Row(i, m), tmp.Row(i, m)
			for j := range rt {
				rt[j] = rx[j] - ry[j]
			}
		}
		return tmp
	default:
		return o.x
	}
}

// product is one of the seven Strassen sub-products, left·right.
type product[T constraints.Float] struct {
	left, right operand[T]
}

func (r *strassenRun[T]) multiply(ctx context.Context, a, b, c View[T], n, depth int) error {
	if n <= r.threshold {
		MultiplyClassical(a, b, c, n)
		r.progress.leafDone()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := n / 2
	a11, a12, a21, a22 := a.Quadrants(m)
	b11, b12, b21, b22 := b.Quadrants(m)
	c11, c12, c21, c22 := c.Quadrants(m)

	products := [7]product[T]{
		{operand[T]{a11, a22, opAdd}, operand[T]{b11, b22, opAdd}}, // M1 = (A11+A22)(B11+B22)
		{operand[T]{a21, a22, opAdd}, operand[T]{x: b11}},          // M2 = (A21+A22)B11
		{operand[T]{x: a11}, operand[T]{b12, b22, opSub}},          // M3 = A11(B12-B22)
		{operand[T]{x: a22}, operand[T]{b21, b11, opSub}},          // M4 = A22(B21-B11)
		{operand[T]{a11, a12, opAdd}, operand[T]{x: b22}},          // M5 = (A11+A12)B22
		{operand[T]{a21, a11, opSub}, operand[T]{b11, b12, opAdd}}, // M6 = (A21-A11)(B11+B12)
		{operand[T]{a12, a22, opSub}, operand[T]{b21, b22, opAdd}}, // M7 = (A12-A22)(B21+B22)
	}

	var (
		s   scratch[T]
		err error
		mk  [7]View[T]
	)
	if depth < r.parallelDepth {
		s = acquireScratch[T](7 * m * m)
		defer releaseScratch(s)
		for k := range mk {
			mk[k] = s.region(k, m)
		}
		err = r.productsParallel(ctx, &products, &mk, m, depth)
	} else {
		s = acquireScratch[T](9 * m * m)
		defer releaseScratch(s)
		for k := range mk {
			mk[k] = s.region(k, m)
		}
		err = r.productsSequential(ctx, &products, &mk, s.region(7, m), s.region(8, m), m, depth)
	}
	if err != nil {
		return err
	}

	recombine(&mk, c11, c12, c21, c22, m)
	return nil
}

func (r *strassenRun[T]) productsSequential(ctx context.Context, products *[7]product[T], mk *[7]View[T], t1, t2 View[T], m, depth int) error {
	for k := range products {
		p := &products[k]
		left := p.left.form(t1, m)
		right := p.right.form(t2, m)
		if err := r.multiply(ctx, left, right, mk[k], m, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// productsParallel runs the seven products concurrently. Each product forms
// its operands in a private buffer so no temporary is shared between
// siblings; the products read a and b only through their quadrant views.
func (r *strassenRun[T]) productsParallel(ctx context.Context, products *[7]product[T], mk *[7]View[T], m, depth int) error {
	g, gctx := errgroup.WithContext(ctx)
	for k := range products {
		p := products[k]
		dst := mk[k]
		g.Go(func() error {
			tmp := acquireScratch[T](2 * m * m)
			defer releaseScratch(tmp)
			left := p.left.form(tmp.region(0, m), m)
			right := p.right.form(tmp.region(1, m), m)
			return r.multiply(gctx, left, right, dst, m, depth+1)
		})
	}
	return g.Wait()
}

// recombine writes the four output quadrants from the packed products.
//
//	C11 = M1 + M4 - M5 + M7
//	C12 = M3 + M5
//	C21 = M2 + M4
//	C22 = M1 - M2 + M3 + M6
func recombine[T constraints.Float](mk *[7]View[T], c11, c12, c21, c22 View[T], m int) {
	for i := 0; i < m; i++ {
		m1, m2, m3, m4 := mk[0].Row(i, m), mk[1].Row(i, m), mk[2].Row(i, m), mk[3].Row(i, m)
		m5, m6, m7 := mk[4].Row(i, m), mk[5].Row(i, m), mk[6].Row(i, m)
		r11, r12, r21, r22 := c11.Row(i, m), c12.Row(i, m), c21.Row(i, m), c22.Row(i, m)
		for j := 0; j < m; j++ {
			r11[j] = m1[j] + m4[j] - m5[j] + m7[j]
			r12[j] = m3[j] + m5[j]
			r21[j] = m2[j] + m4[j]
			r22[j] = m1[j] - m2[j] + m3[j] + m6[j]
		}
	}
}

// leafTracker converts completed classical leaves into progress reports.
// A nil tracker ignores all calls.
type leafTracker struct {
	mu     sync.Mutex
	done   int64
	total  int64
	last   float64
	report func(float64)
}

func newLeafTracker(n, threshold int, report func(float64)) *leafTracker {
	if report == nil {
		return nil
	}
	total := int64(1)
	for l := recursionLevels(n, threshold); l > 0; l-- {
		total *= 7
	}
	report(0)
	return &leafTracker{total: total, report: report}
}

func (t *leafTracker) leafDone() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done++
	progress := float64(t.done) / float64(t.total)
	if progress-t.last >= ProgressReportThreshold || t.done == t.total {
		t.last = progress
		t.report(progress)
	}
}
