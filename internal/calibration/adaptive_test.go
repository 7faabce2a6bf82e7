package calibration

import (
	"runtime"
	"testing"

	"github.com/agbru/matcalc/internal/matrix"
)

func TestGenerateThresholds(t *testing.T) {
	t.Parallel()
	for name, thresholds := range map[string][]int{
		"full":  GenerateThresholds(),
		"quick": GenerateQuickThresholds(),
	} {
		if len(thresholds) == 0 {
			t.Errorf("%s: no thresholds", name)
		}
		for _, th := range thresholds {
			if th < MinThreshold || th > MaxThreshold {
				t.Errorf("%s: threshold %d outside [%d, %d]", name, th, MinThreshold, MaxThreshold)
			}
			if !matrix.IsValidSize(CalibrationN, th) {
				t.Errorf("%s: %d does not divide the calibration size cleanly", name, th)
			}
		}
	}
}

func TestGenerateParallelDepths(t *testing.T) {
	t.Parallel()
	depths := GenerateParallelDepths()
	if depths[0] != 0 {
		t.Errorf("depths should start with sequential, got %v", depths)
	}
	if runtime.NumCPU() == 1 && len(depths) != 1 {
		t.Errorf("single CPU: depths = %v, want [0]", depths)
	}
}

func TestEstimates(t *testing.T) {
	t.Parallel()
	if th := EstimateOptimalThreshold(); ValidateThreshold(th) != th {
		t.Errorf("EstimateOptimalThreshold() = %d is out of range", th)
	}
	if d := EstimateOptimalParallelDepth(); ValidateParallelDepth(d) != d {
		t.Errorf("EstimateOptimalParallelDepth() = %d is out of range", d)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, wantThreshold, wantDepth int
	}{
		{-1, MinThreshold, 0},
		{2, MinThreshold, 2},
		{64, 64, 3},
		{4096, MaxThreshold, 3},
	}
	for _, tt := range tests {
		if got := ValidateThreshold(tt.in); got != tt.wantThreshold {
			t.Errorf("ValidateThreshold(%d) = %d, want %d", tt.in, got, tt.wantThreshold)
		}
		if got := ValidateParallelDepth(tt.in); got != tt.wantDepth {
			t.Errorf("ValidateParallelDepth(%d) = %d, want %d", tt.in, got, tt.wantDepth)
		}
	}
}

func TestGenerateCandidates(t *testing.T) {
	t.Parallel()
	got := GenerateCandidates([]int{32, 16}, []int{1, 0})
	want := []Candidate{{16, 0}, {16, 1}, {32, 0}, {32, 1}}
	if len(got) != len(want) {
		t.Fatalf("GenerateCandidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(GenerateCandidates(nil, []int{0})) != 0 {
		t.Error("no thresholds should give no candidates")
	}
}
