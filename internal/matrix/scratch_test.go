package matrix

import (
	"fmt"
	"math"
	"testing"
)

func TestSizeClass(t *testing.T) {
	t.Parallel()

	testCases := []struct{ size, want int }{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {9 * 64, 10}, {1 << 20, 20},
	}
	for _, tc := range testCases {
		if got := sizeClass(tc.size); got != tc.want {
			t.Errorf("sizeClass(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestScratchReuse(t *testing.T) {
	// Not parallel: exercises the shared pools.
	s := acquireScratch[float32](9 * 16)
	if len(s.data()) != 9*16 {
		t.Fatalf("len = %d, want %d", len(s.data()), 9*16)
	}
	for k := 0; k < 9; k++ {
		r := s.region(k, 4)
		if r.Stride != 4 || len(r.Data) != 16 || cap(r.Data) != 16 {
			t.Fatalf("region %d has stride %d len %d cap %d", k, r.Stride, len(r.Data), cap(r.Data))
		}
	}
	releaseScratch(s)

	// A smaller request in the same class gets a correctly sized slice.
	s2 := acquireScratch[float32](130)
	if len(s2.data()) != 130 {
		t.Errorf("len = %d, want 130", len(s2.data()))
	}
	releaseScratch(s2)

	// A different element type never receives a float32 buffer.
	s3 := acquireScratch[float64](130)
	if len(s3.data()) != 130 {
		t.Errorf("len = %d, want 130", len(s3.data()))
	}
	releaseScratch(s3)
}

func TestPeakScratch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		n, threshold, depth int
		want                int64
	}{
		{n: 16, threshold: 16, want: 0},
		{n: 32, threshold: 16, want: 9 * 16 * 16},
		{n: 64, threshold: 16, want: 9*32*32 + 9*16*16},
		{n: 32, threshold: 16, depth: 1, want: 21 * 16 * 16},
		{n: 64, threshold: 16, depth: 1, want: 21*32*32 + 7*9*16*16},
		{n: 64, threshold: 16, depth: 5, want: 21*32*32 + 7*21*16*16},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("N=%d/T=%d/P=%d", tc.n, tc.threshold, tc.depth), func(t *testing.T) {
			t.Parallel()
			if got := PeakScratch(tc.n, tc.threshold, tc.depth); got != tc.want {
				t.Errorf("PeakScratch() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDenseBytes(t *testing.T) {
	t.Parallel()

	if got := DenseBytes[float32](512, 3); got != 3*512*512*4 {
		t.Errorf("DenseBytes[float32](512, 3) = %d", got)
	}
	if got := DenseBytes[float64](10, 1); got != 800 {
		t.Errorf("DenseBytes[float64](10, 1) = %d", got)
	}
	if got := DenseBytes[float32](0, 3); got != 0 {
		t.Errorf("DenseBytes(0, 3) = %d, want 0", got)
	}
	for _, n := range []int{math.MaxInt32, math.MaxInt} {
		if got := DenseBytes[float32](n, 3); got != math.MaxInt64 {
			t.Errorf("DenseBytes(%d, 3) = %d, want saturation", n, got)
		}
	}
}
