package matrix

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestStrassenEquivalence_PropertyBased checks that Strassen, with random
// sizes, seeds, thresholds and parallel depths, always agrees with the naive
// oracle. Inputs are small integers so every result is exact.
func TestStrassenEquivalence_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("Strassen matches the naive product", prop.ForAll(
		func(n int, seed uint64, threshold int, depth int) bool {
			a, b := RandomPair[float32](n, seed, 9)
			want, err := MultiplyNaive(a, b)
			if err != nil {
				t.Logf("naive: %v", err)
				return false
			}
			got, err := MultiplyDense(context.Background(), a, b, Options{Threshold: threshold, ParallelDepth: depth})
			if err != nil {
				t.Logf("strassen n=%d threshold=%d: %v", n, threshold, err)
				return false
			}
			return EqualWithin(got, want, DefaultTolerance)
		},
		gen.IntRange(1, 48),
		gen.UInt64(),
		gen.IntRange(1, 12),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

// TestStrassenScaling_PropertyBased checks (kA)·B = k(A·B).
func TestStrassenScaling_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("scaling commutes with the product", prop.ForAll(
		func(exp int, seed uint64, k int) bool {
			n := 1 << exp
			a, b := RandomPair[float32](n, seed, 9)
			opts := Options{Threshold: 4}

			ab, err := MultiplyDense(context.Background(), a, b, opts)
			if err != nil {
				return false
			}
			kab, err := MultiplyDense(context.Background(), a.Clone().Scale(float32(k)), b, opts)
			if err != nil {
				return false
			}
			return EqualWithin(kab, ab.Scale(float32(k)), DefaultTolerance)
		},
		gen.IntRange(0, 6),
		gen.UInt64(),
		gen.IntRange(-3, 3),
	))

	properties.TestingRun(t)
}

// TestStrassenIdentity_PropertyBased checks A·I = I·A = A.
func TestStrassenIdentity_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("identity is neutral", prop.ForAll(
		func(n int, seed uint64) bool {
			a, _ := RandomPair[float32](n, seed, 9)
			id := Identity[float32](n)
			opts := Options{Threshold: 2}

			left, err := MultiplyDense(context.Background(), a, id, opts)
			if err != nil {
				return false
			}
			right, err := MultiplyDense(context.Background(), id, a, opts)
			if err != nil {
				return false
			}
			return EqualWithin(left, a, 0) && EqualWithin(right, a, 0)
		},
		gen.IntRange(1, 40),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
