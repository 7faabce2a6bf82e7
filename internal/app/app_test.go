package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/agbru/matcalc/internal/calibration"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/orchestration"
)

// Run configures global logging and theme state, so these tests do not run
// in parallel.

func newApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	full := append([]string{"matcalc", "-config", "", "-n", "32", "-seed", "7", "-threshold", "8", "-no-color"}, args...)
	a, err := New(full, &errBuf)
	if err != nil {
		t.Fatalf("New(%v): %v\n%s", full, err, errBuf.String())
	}
	return a, &errBuf
}

func TestNew(t *testing.T) {
	a, _ := newApp(t, "-algo", "strassen")
	if a.Config.N != 32 || a.Config.Algo != "strassen" || a.Config.Seed != 7 {
		t.Errorf("Config = %+v", a.Config)
	}
	if a.Factory == nil || a.ErrWriter == nil {
		t.Error("factory and error writer must be set")
	}
}

func TestNewErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := New([]string{"matcalc", "-config", "", "-h"}, &buf)
	if !IsHelpError(err) {
		t.Errorf("-h: err = %v, want flag.ErrHelp", err)
	}

	_, err = New([]string{"matcalc", "-config", "", "-algo", "quantum"}, &buf)
	if !errors.As(err, &apperrors.ConfigError{}) {
		t.Errorf("unknown algorithm: err = %v, want ConfigError", err)
	}
	if IsHelpError(err) {
		t.Error("a config error is not a help error")
	}
}

func TestRunBenchmark(t *testing.T) {
	a, _ := newApp(t, "-algo", "strassen", "-d")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	for _, want := range []string{"Execution Configuration", "Comparison Summary", orchestration.MatchMessage, "Result: 32×32"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunJSON(t *testing.T) {
	a, _ := newApp(t, "-json")
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	var report orchestration.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out.String())
	}
	if code != apperrors.ExitSuccess || report.ExitCode != code || report.Status != "match" {
		t.Errorf("code %d, report %+v", code, report)
	}
	if report.Seed != 7 || report.N != 32 || report.Reference != "naive" || report.RunID == "" {
		t.Errorf("report header = %+v", report)
	}
	if len(report.Results) != len(a.Factory.List()) {
		t.Errorf("got %d results, want one per algorithm", len(report.Results))
	}
}

func TestRunJSONOverflowReportsMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	// Products this large overflow float32 and the oracle itself holds +Inf.
	a, errBuf := newApp(t, "-json", "-algo", "strassen", "-max-value", "9000000000000000000", "-output", path)
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)

	if code != apperrors.ExitErrorMismatch {
		t.Fatalf("exit code = %d, want %d\nstderr: %s", code, apperrors.ExitErrorMismatch, errBuf.String())
	}
	var report orchestration.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out.String())
	}
	if report.Status != "mismatch" || report.ExitCode != code {
		t.Errorf("report = %+v", report)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var saved orchestration.Report
	if err := json.Unmarshal(data, &saved); err != nil || saved.RunID != report.RunID {
		t.Errorf("saved report run %q: %v", saved.RunID, err)
	}
}

func TestRunRejectsInputsOverMemoryBudget(t *testing.T) {
	a, errBuf := newApp(t, "-n", "4096", "-scratch-limit", "1048576")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorResource {
		t.Fatalf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorResource, errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "Status: Failure (Resources)") {
		t.Errorf("stderr = %q", errBuf.String())
	}
	if strings.Contains(out.String(), "Status: Success") {
		t.Errorf("benchmark ran despite the budget:\n%s", out.String())
	}
}

func TestRunQuiet(t *testing.T) {
	a, _ := newApp(t, "-q", "-algo", "strassen-par")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("quiet output = %q, want one line per algorithm", out.String())
	}
	for _, prefix := range []string{"strassen-par\tok\t", "naive\tok\t"} {
		if !strings.Contains(out.String(), prefix) {
			t.Errorf("quiet output missing %q", prefix)
		}
	}
}

func TestRunWritesReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	a, _ := newApp(t, "-algo", "naive", "-o", path)
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "Report saved to") {
		t.Errorf("output = %q", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report orchestration.Report
	if err := json.Unmarshal(data, &report); err != nil || len(report.Results) != 1 {
		t.Errorf("report file: %v, %+v", err, report)
	}
}

func TestRunTimeout(t *testing.T) {
	a, _ := newApp(t, "-algo", "strassen", "-timeout", "1ns")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorTimeout, out.String())
	}
}

func TestRunCanceled(t *testing.T) {
	a, _ := newApp(t, "-algo", "strassen", "-q")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if code := a.Run(ctx, &out); code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRunWithMetricsServer(t *testing.T) {
	a, _ := newApp(t, "-q", "-algo", "strassen", "-metrics-addr", "127.0.0.1:0")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d\n%s", code, out.String())
	}
}

func TestRunMetricsServerBindFailure(t *testing.T) {
	a, errBuf := newApp(t, "-q", "-metrics-addr", "256.0.0.1:bad")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "Metrics server error") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRunAutoCalibrateUsesCachedProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	p := calibration.NewProfile()
	p.OptimalThreshold, p.OptimalParallelDepth = 16, 1
	if err := p.SaveProfile(path); err != nil {
		t.Fatal(err)
	}

	a, _ := newApp(t, "-algo", "strassen", "-auto-calibrate", "-calibration-profile", path)
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "Using cached calibration") {
		t.Errorf("output = %q", out.String())
	}
	if a.Config.Threshold != 16 || a.Config.ParallelDepth != 1 {
		t.Errorf("calibrated config = %+v", a.Config)
	}
}

func TestRunContext(t *testing.T) {
	ctx, stop := runContext(context.Background(), 10*time.Millisecond)
	defer stop()
	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			t.Errorf("ctx.Err() = %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run context did not time out")
	}

	ctx, stop = runContext(context.Background(), time.Hour)
	stop()
	stop()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("after stop ctx.Err() = %v, want context.Canceled", ctx.Err())
	}
}
