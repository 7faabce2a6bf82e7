package orchestration

import (
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
)

// Report is the machine-readable summary of a run, written with -json or
// -output.
type Report struct {
	RunID         string            `json:"run_id"`
	Timestamp     time.Time         `json:"timestamp"`
	N             int               `json:"n"`
	Seed          uint64            `json:"seed"`
	MaxValue      int               `json:"max_value"`
	Threshold     int               `json:"threshold"`
	ParallelDepth int               `json:"parallel_depth"`
	Tolerance     float64           `json:"tolerance"`
	GOMAXPROCS    int               `json:"gomaxprocs"`
	Reference     string            `json:"reference,omitempty"`
	Match         bool              `json:"match"`
	Status        string            `json:"status"`
	ExitCode      int               `json:"exit_code"`
	Results       []AlgorithmReport `json:"results"`
}

// AlgorithmReport is the entry of one algorithm in a Report.
type AlgorithmReport struct {
	Name       string  `json:"name"`
	DurationNs int64   `json:"duration_ns"`
	Duration   string  `json:"duration"`
	GFLOPS     float64 `json:"gflops,omitempty"`
	Checksum   float64 `json:"checksum,omitempty"`
	MaxAbsDiff float64 `json:"max_abs_diff"`
	Match      bool    `json:"match"`
	Error      string  `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string { return uuid.NewString() }

// BuildReport summarizes results. The exit code follows the rules of
// AnalyzeComparisonResults.
func BuildReport(runID string, results []CalculationResult, in Inputs, cfg config.AppConfig) Report {
	v := Verify(results, cfg.Tolerance)
	r := Report{
		RunID:         runID,
		Timestamp:     time.Now().UTC(),
		N:             cfg.N,
		Seed:          in.Seed,
		MaxValue:      cfg.MaxValue,
		Threshold:     cfg.Threshold,
		ParallelDepth: cfg.ParallelDepth,
		Tolerance:     cfg.Tolerance,
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		Reference:     v.Reference,
		Match:         v.Match && v.Reference != "",
		Results:       make([]AlgorithmReport, 0, len(v.Verdicts)),
	}

	for _, vd := range v.Verdicts {
		ar := AlgorithmReport{
			Name:       vd.Name,
			DurationNs: vd.Duration.Nanoseconds(),
			Duration:   vd.Duration.String(),
		}
		if vd.Err != nil {
			ar.Error = vd.Err.Error()
		} else {
			ar.GFLOPS = finite(engine.GFLOPS(cfg.N, vd.Duration.Seconds()))
			ar.Checksum = finite(vd.Result.Sum())
			ar.MaxAbsDiff = finite(vd.Comparison.MaxAbsDiff)
			ar.Match = vd.Comparison.Equal
		}
		r.Results = append(r.Results, ar)
	}

	switch {
	case v.Reference == "":
		r.ExitCode, r.Status = apperrors.ExitCodeFor(v.FirstError), "failure"
	case !v.Match:
		r.ExitCode, r.Status = apperrors.ExitErrorMismatch, "mismatch"
	case v.FirstError != nil:
		r.ExitCode, r.Status = apperrors.ExitCodeFor(v.FirstError), "partial"
	default:
		r.ExitCode, r.Status = apperrors.ExitSuccess, "match"
	}
	return r
}

// finite maps infinities to the largest float64 and NaN to zero so the
// report always encodes.
func finite(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return math.MaxFloat64
	case math.IsInf(x, -1):
		return -math.MaxFloat64
	}
	return x
}
