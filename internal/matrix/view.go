// Package matrix implements dense square matrix multiplication: a classical
// O(n³) kernel, Strassen's recursive algorithm built on top of it, a naive
// whole-matrix oracle and a tolerance comparator used to validate results.
//
// Matrices are row-major. Sub-blocks are described by View, a non-owning
// window into a backing slice whose row stride is inherited from the matrix it
// was carved from, so quadrants are addressed without copying.
package matrix

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// View is a non-owning reference to a square region of a row-major buffer.
// Element (i, j) is stored at Data[Off+i*Stride+j]. A quadrant keeps the
// Stride of its originating matrix, never its own width.
type View[T constraints.Float] struct {
	Data   []T
	Off    int
	Stride int
}

// NewView returns a view starting at the beginning of data with the given
// row stride.
func NewView[T constraints.Float](data []T, stride int) View[T] {
	return View[T]{Data: data, Stride: stride}
}

// At returns the element at row i, column j.
func (v View[T]) At(i, j int) T {
	return v.Data[v.Off+i*v.Stride+j]
}

// Set stores x at row i, column j.
func (v View[T]) Set(i, j int, x T) {
	v.Data[v.Off+i*v.Stride+j] = x
}

// Row returns the first n elements of row i as a slice aliasing the backing
// buffer. The capacity is clipped so appends cannot spill into the next row.
func (v View[T]) Row(i, n int) []T {
	start := v.Off + i*v.Stride
	return v.Data[start : start+n : start+n]
}

// Sub returns the view whose top-left corner is (i, j) in v.
func (v View[T]) Sub(i, j int) View[T] {
	return View[T]{Data: v.Data, Off: v.Off + i*v.Stride + j, Stride: v.Stride}
}

// Quadrants splits v into its four m×m quadrants, in the order top-left,
// top-right, bottom-left, bottom-right.
func (v View[T]) Quadrants(m int) (q11, q12, q21, q22 View[T]) {
	return v.Sub(0, 0), v.Sub(0, m), v.Sub(m, 0), v.Sub(m, m)
}

// Fits reports whether v can address an n×n block without going out of bounds.
func (v View[T]) Fits(n int) bool {
	if n == 0 {
		return true
	}
	if v.Data == nil || v.Off < 0 || v.Stride < n {
		return false
	}
	last := v.Off + (n-1)*v.Stride + n
	return last <= len(v.Data)
}

func (v View[T]) shape() viewShape {
	return viewShape{length: len(v.Data), off: v.Off, stride: v.Stride}
}

// Dense is an owned n×n row-major matrix with stride n.
type Dense[T constraints.Float] struct {
	N    int
	Data []T
}

// Matrix is the single-precision matrix used throughout the application.
type Matrix = Dense[float32]

// New allocates a zero n×n matrix.
func New[T constraints.Float](n int) *Dense[T] {
	if n < 0 {
		panic(fmt.Sprintf("matrix: negative size %d", n))
	}
	return &Dense[T]{N: n, Data: make([]T, n*n)}
}

// FromRows builds a matrix from a square slice of rows.
func FromRows[T constraints.Float](rows [][]T) (*Dense[T], error) {
	n := len(rows)
	d := New[T](n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), n)
		}
		copy(d.Data[i*n:], row)
	}
	return d, nil
}

// Identity returns the n×n identity matrix.
func Identity[T constraints.Float](n int) *Dense[T] {
	d := New[T](n)
	for i := 0; i < n; i++ {
		d.Data[i*n+i] = 1
	}
	return d
}

// View returns a stride-N view over the whole matrix.
func (d *Dense[T]) View() View[T] {
	return View[T]{Data: d.Data, Stride: d.N}
}

// At returns the element at row i, column j.
func (d *Dense[T]) At(i, j int) T { return d.Data[i*d.N+j] }

// Set stores x at row i, column j.
func (d *Dense[T]) Set(i, j int, x T) { d.Data[i*d.N+j] = x }

// Rows returns a copy of the matrix as a slice of rows.
func (d *Dense[T]) Rows() [][]T {
	rows := make([][]T, d.N)
	for i := range rows {
		rows[i] = append([]T(nil), d.Data[i*d.N:(i+1)*d.N]...)
	}
	return rows
}

// Clone returns a deep copy of d.
func (d *Dense[T]) Clone() *Dense[T] {
	return &Dense[T]{N: d.N, Data: append([]T(nil), d.Data...)}
}

// Scale multiplies every element of d by k in place and returns d.
func (d *Dense[T]) Scale(k T) *Dense[T] {
	for i := range d.Data {
		d.Data[i] *= k
	}
	return d
}

// Pad returns a p×p copy of d whose extra rows and columns are zero.
// p must be at least d.N.
func (d *Dense[T]) Pad(p int) *Dense[T] {
	if p < d.N {
		panic(fmt.Sprintf("matrix: cannot pad %d to %d", d.N, p))
	}
	if p == d.N {
		return d.Clone()
	}
	out := New[T](p)
	for i := 0; i < d.N; i++ {
		copy(out.Data[i*p:i*p+d.N], d.Data[i*d.N:(i+1)*d.N])
	}
	return out
}

// Crop returns the top-left n×n block of d as a new matrix.
func (d *Dense[T]) Crop(n int) *Dense[T] {
	if n > d.N {
		panic(fmt.Sprintf("matrix: cannot crop %d to %d", d.N, n))
	}
	if n == d.N {
		return d.Clone()
	}
	out := New[T](n)
	for i := 0; i < n; i++ {
		copy(out.Data[i*n:(i+1)*n], d.Data[i*d.N:i*d.N+n])
	}
	return out
}

// Sum returns the sum of all elements, accumulated in float64.
func (d *Dense[T]) Sum() float64 {
	var s float64
	for _, x := range d.Data {
		s += float64(x)
	}
	return s
}

// Trace returns the sum of the diagonal, accumulated in float64.
func (d *Dense[T]) Trace() float64 {
	var s float64
	for i := 0; i < d.N; i++ {
		s += float64(d.Data[i*d.N+i])
	}
	return s
}
