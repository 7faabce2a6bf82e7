package orchestration

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/matrix"
)

func TestBuildReport(t *testing.T) {
	t.Parallel()
	good := mustRows(t, [][]float32{{1, 2}, {3, 4}})
	nan := mustRows(t, [][]float32{{1, 2}, {3, float32(math.NaN())}})
	cfg := baseConfig()
	cfg.N = 2
	in := Inputs{Seed: 9}

	tests := []struct {
		name       string
		results    []CalculationResult
		wantStatus string
		wantCode   int
	}{
		{"match", []CalculationResult{{Name: "naive", Result: good, Duration: time.Millisecond}, {Name: "strassen", Result: good}}, "match", apperrors.ExitSuccess},
		{"mismatch", []CalculationResult{{Name: "naive", Result: good}, {Name: "strassen", Result: nan}}, "mismatch", apperrors.ExitErrorMismatch},
		{"partial", []CalculationResult{{Name: "naive", Result: good}, {Name: "strassen", Err: context.Canceled}}, "partial", apperrors.ExitErrorCanceled},
		{"failure", []CalculationResult{{Name: "naive", Err: errors.New("boom")}}, "failure", apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id := NewRunID()
			r := BuildReport(id, tt.results, in, cfg)
			if r.Status != tt.wantStatus || r.ExitCode != tt.wantCode {
				t.Errorf("status %q code %d, want %q %d", r.Status, r.ExitCode, tt.wantStatus, tt.wantCode)
			}
			if _, err := uuid.Parse(r.RunID); err != nil || r.RunID != id {
				t.Errorf("RunID %q: %v", r.RunID, err)
			}
			if len(r.Results) != len(tt.results) {
				t.Fatalf("%d results, want %d", len(r.Results), len(tt.results))
			}
			if _, err := json.Marshal(r); err != nil {
				t.Errorf("report should always encode: %v", err)
			}
		})
	}
}

func TestBuildReportFields(t *testing.T) {
	t.Parallel()
	good := mustRows(t, [][]float32{{1, 2}, {3, 4}})
	cfg := baseConfig()
	cfg.N = 2
	r := BuildReport("id", []CalculationResult{
		{Name: "naive", Result: good, Duration: 2 * time.Millisecond},
		{Name: "strassen", Err: matrix.ErrScratchExhausted},
	}, Inputs{Seed: 5}, cfg)

	if r.Reference != "naive" || r.Seed != 5 || r.N != 2 || r.GOMAXPROCS < 1 {
		t.Errorf("report header = %+v", r)
	}
	if got := r.Results[0]; got.Checksum != 10 || !got.Match || got.DurationNs != 2e6 || got.GFLOPS <= 0 {
		t.Errorf("naive entry = %+v", got)
	}
	if got := r.Results[1]; got.Error == "" || got.Match {
		t.Errorf("strassen entry = %+v", got)
	}
}

func TestBuildReportNonFiniteChecksum(t *testing.T) {
	t.Parallel()
	good := mustRows(t, [][]float32{{1, 2}, {3, 4}})
	nan := mustRows(t, [][]float32{{1, 2}, {3, float32(math.NaN())}})
	inf := mustRows(t, [][]float32{{1, 2}, {3, float32(math.Inf(1))}})
	cfg := baseConfig()
	cfg.N = 2
	r := BuildReport("id", []CalculationResult{
		{Name: "naive", Result: inf},
		{Name: "strassen", Result: nan},
		{Name: "gonum", Result: good},
	}, Inputs{}, cfg)

	if r.ExitCode != apperrors.ExitErrorMismatch {
		t.Errorf("exit code = %d, want %d", r.ExitCode, apperrors.ExitErrorMismatch)
	}
	if got := r.Results[0].Checksum; got != math.MaxFloat64 {
		t.Errorf("+Inf checksum reported as %v", got)
	}
	if got := r.Results[1].Checksum; got != 0 {
		t.Errorf("NaN checksum reported as %v", got)
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil || back.Status != "mismatch" {
		t.Errorf("round trip status %q: %v", back.Status, err)
	}
}

func TestFinite(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want float64 }{
		{1.5, 1.5},
		{math.Inf(1), math.MaxFloat64},
		{math.Inf(-1), -math.MaxFloat64},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := finite(tt.in); got != tt.want {
			t.Errorf("finite(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
