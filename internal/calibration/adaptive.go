package calibration

import (
	"runtime"
	"slices"
)

// Threshold bounds accepted from profiles and estimates.
const (
	MinThreshold = 4
	MaxThreshold = 512
)

// GenerateThresholds returns the Strassen cut-offs tried by a full
// calibration. All are powers of two, so CalibrationN needs no padding. Wide
// SIMD units make the classical kernel competitive on larger blocks, so the
// top candidate grows with them.
func GenerateThresholds() []int {
	thresholds := []int{8, 16, 32, 64, 128}
	if hasWideVectors() {
		thresholds = append(thresholds, 256)
	}
	return thresholds
}

// GenerateQuickThresholds returns the reduced candidate set of an
// auto-calibration run.
func GenerateQuickThresholds() []int {
	return []int{16, 32, 64}
}

// GenerateParallelDepths returns the parallel depths worth timing on this
// machine. One level already spawns seven goroutines, two levels 49.
func GenerateParallelDepths() []int {
	switch numCPU := runtime.NumCPU(); {
	case numCPU == 1:
		return []int{0}
	case numCPU < 8:
		return []int{0, 1}
	default:
		return []int{0, 1, 2}
	}
}

// EstimateOptimalThreshold guesses a cut-off without benchmarking.
func EstimateOptimalThreshold() int {
	if hasWideVectors() {
		return 64
	}
	return 32
}

// EstimateOptimalParallelDepth guesses a parallel depth without
// benchmarking.
func EstimateOptimalParallelDepth() int {
	switch numCPU := runtime.NumCPU(); {
	case numCPU == 1:
		return 0
	case numCPU < 8:
		return 1
	default:
		return 2
	}
}

// ValidateThreshold clamps t to [MinThreshold, MaxThreshold].
func ValidateThreshold(t int) int {
	return min(max(t, MinThreshold), MaxThreshold)
}

// ValidateParallelDepth clamps d to [0, 3].
func ValidateParallelDepth(d int) int {
	return min(max(d, 0), 3)
}

// Candidate is one (threshold, parallel depth) configuration to time.
type Candidate struct {
	Threshold     int
	ParallelDepth int
}

// GenerateCandidates combines every threshold with every depth, thresholds
// ascending first.
func GenerateCandidates(thresholds, depths []int) []Candidate {
	thresholds, depths = slices.Sorted(slices.Values(thresholds)), slices.Sorted(slices.Values(depths))
	out := make([]Candidate, 0, len(thresholds)*len(depths))
	for _, t := range thresholds {
		for _, d := range depths {
			out = append(out, Candidate{Threshold: t, ParallelDepth: d})
		}
	}
	return out
}
