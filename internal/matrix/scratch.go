package matrix

import (
	"math"
	"math/bits"
	"sync"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// maxPooledClass bounds the buffers kept in the scratch pools. Larger
// buffers are allocated on demand and left to the garbage collector so a
// single huge run does not pin memory for the rest of the process.
const maxPooledClass = 24

// scratchPools holds one sync.Pool per power-of-two capacity. Buffers of
// different element types may share a pool; acquireScratch discards any
// buffer whose type does not match.
var scratchPools [maxPooledClass + 1]sync.Pool

// scratch is the call-local buffer of one recursive activation.
type scratch[T constraints.Float] struct {
	buf   *[]T
	class int
}

// sizeClass returns the smallest c such that 1<<c >= size.
func sizeClass(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size - 1))
}

// acquireScratch returns a buffer of exactly size elements. Its contents are
// unspecified; every region must be written before it is read.
// The buffer must be released with releaseScratch, preferably with defer:
//
//	s := acquireScratch[float32](9 * m * m)
//	defer releaseScratch(s)
func acquireScratch[T constraints.Float](size int) scratch[T] {
	class := sizeClass(size)
	if class <= maxPooledClass {
		if p, ok := scratchPools[class].Get().(*[]T); ok {
			*p = (*p)[:size]
			return scratch[T]{buf: p, class: class}
		}
		b := make([]T, size, 1<<class)
		return scratch[T]{buf: &b, class: class}
	}
	b := make([]T, size)
	return scratch[T]{buf: &b, class: class}
}

// releaseScratch returns a buffer to its pool. Oversized buffers are dropped.
func releaseScratch[T constraints.Float](s scratch[T]) {
	if s.buf == nil || s.class > maxPooledClass {
		return
	}
	scratchPools[s.class].Put(s.buf)
}

// data returns the live elements of the buffer.
func (s scratch[T]) data() []T { return *s.buf }

// region returns the idx-th packed m×m region of the buffer as a view with
// stride m.
func (s scratch[T]) region(idx, m int) View[T] {
	mm := m * m
	d := *s.buf
	return View[T]{Data: d[idx*mm : (idx+1)*mm : (idx+1)*mm], Stride: m}
}

// elemSize returns the size in bytes of one element of T.
func elemSize[T constraints.Float]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

// PeakScratch returns the maximum number of scratch elements simultaneously
// live while multiplying two n×n matrices with the given threshold, when the
// top parallelDepth levels run their seven products concurrently.
//
// A sequential level holds 9·m² (M1..M7, T1, T2) while one child runs at a
// time. A parallel level holds 7·m² products plus a private T1/T2 pair per
// product, and all seven children are live at once.
func PeakScratch(n, threshold, parallelDepth int) int64 {
	if n <= threshold || n < 2 {
		return 0
	}
	m := int64(n / 2)
	mm := m * m
	child := PeakScratch(n/2, threshold, parallelDepth-1)
	if parallelDepth > 0 {
		return 21*mm + 7*child
	}
	return 9*mm + child
}

// DenseBytes returns the storage of count n×n matrices of T, saturating at
// math.MaxInt64.
func DenseBytes[T constraints.Float](n, count int) int64 {
	if n <= 0 || count <= 0 {
		return 0
	}
	hi, elems := bits.Mul64(uint64(n), uint64(n))
	if hi != 0 {
		return math.MaxInt64
	}
	hi, elems = bits.Mul64(elems, uint64(count))
	if hi != 0 {
		return math.MaxInt64
	}
	hi, size := bits.Mul64(elems, uint64(elemSize[T]()))
	if hi != 0 || size > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(size)
}
