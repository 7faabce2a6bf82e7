package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/agbru/matcalc/internal/cli"
	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/ui"
)

// Calculators used by the calibration.
const (
	sequentialAlgo = "strassen"
	parallelAlgo   = "strassen-par"
)

// CalibrationOptions configures RunCalibrationWithOptions.
type CalibrationOptions struct {
	// ProfilePath is the profile location; empty selects the default path.
	ProfilePath string
	// SaveProfile stores the result.
	SaveProfile bool
	// LoadProfile reuses a valid cached profile instead of measuring.
	LoadProfile bool
	// Timeout bounds each trial to a sixth of it (at least 2s).
	Timeout time.Duration
}

// RunCalibration measures every candidate threshold and parallel depth at
// CalibrationN, prints the table and saves the best pair to the default
// profile. It returns the process exit code.
func RunCalibration(ctx context.Context, out io.Writer, calculatorRegistry map[string]engine.Calculator) int {
	return RunCalibrationWithOptions(ctx, out, calculatorRegistry, CalibrationOptions{SaveProfile: true})
}

// RunCalibrationWithOptions is RunCalibration with explicit options.
func RunCalibrationWithOptions(ctx context.Context, out io.Writer, calculatorRegistry map[string]engine.Calculator, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Strassen Threshold ---\n")

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(opts.ProfilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile from %s%s\n", ui.ColorGreen(), profilePath(opts.ProfilePath), ui.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile)
			fmt.Fprintf(out, "\nUsing cached calibration: %s-threshold %d -parallel-depth %d%s\n",
				ui.ColorYellow(), profile.OptimalThreshold, profile.OptimalParallelDepth, ui.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	seq := calculatorRegistry[sequentialAlgo]
	if seq == nil {
		fmt.Fprintf(out, "%sCritical error: the '%s' algorithm is required for calibration but was not found.%s\n",
			ui.ColorRed(), sequentialAlgo, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	par := calculatorRegistry[parallelAlgo]
	depths := GenerateParallelDepths()
	if par == nil {
		depths = []int{0}
	}
	candidates := GenerateCandidates(GenerateThresholds(), depths)
	fmt.Fprintf(out, "%sTiming %d configurations on %d×%d matrices with %d CPU cores (%s)%s\n",
		ui.ColorCyan(), len(candidates), CalibrationN, CalibrationN, runtime.NumCPU(), NewProfile().CPUModel, ui.ColorReset())

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	runner := newCalibrationRunner(ctx, timeout, CalibrationN, seq, par)
	start := time.Now()

	var wg sync.WaitGroup
	progressChan := make(chan engine.ProgressUpdate, len(candidates)+1)
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)
	results, best := runner.findBest(candidates, func(p float64) {
		progressChan <- engine.ProgressUpdate{CalculatorIndex: 0, Value: p}
	})
	close(progressChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", ui.ColorYellow(), ui.ColorReset())
		return apperrors.HandleCalculationError(err, time.Since(start), out, ui.Palette{})
	}
	if best.Duration == maxDuration {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", ui.ColorRed(), ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, results, best.Candidate)
	fmt.Fprintf(out, "\nRecommendation for this machine: %s-threshold %d -parallel-depth %d%s\n",
		ui.ColorYellow(), best.Threshold, best.ParallelDepth, ui.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalThreshold = best.Threshold
		profile.OptimalParallelDepth = best.ParallelDepth
		profile.CalibrationN = CalibrationN
		profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n", ui.ColorGreen(), profilePath(opts.ProfilePath), ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate tunes cfg before a benchmark. It uses, in order, a valid
// cached profile, a micro-benchmark with enough confidence, or a short
// run of the quick candidates at CalibrationN. The boolean is false when
// cfg was left unchanged.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer, calculatorRegistry map[string]engine.Calculator) (updated config.AppConfig, ok bool) {
	if updated, ok := LoadCachedCalibration(cfg, cfg.CalibrationProfile); ok {
		fmt.Fprintf(out, "%sUsing cached calibration%s: threshold=%s%d%s, parallel depth=%s%d%s\n",
			ui.ColorGreen(), ui.ColorReset(),
			ui.ColorYellow(), updated.Threshold, ui.ColorReset(),
			ui.ColorYellow(), updated.ParallelDepth, ui.ColorReset())
		return updated, true
	}

	if micro, err := QuickCalibrate(ctx); err == nil && micro.Confidence >= 0.5 {
		updated = applyCalibration(cfg, micro.Threshold, micro.ParallelDepth)
		fmt.Fprintf(out, "%sQuick calibration%s (%v): threshold=%s%d%s, parallel depth=%s%d%s (confidence: %.0f%%)\n",
			ui.ColorGreen(), ui.ColorReset(), micro.Duration.Round(time.Millisecond),
			ui.ColorYellow(), updated.Threshold, ui.ColorReset(),
			ui.ColorYellow(), updated.ParallelDepth, ui.ColorReset(),
			micro.Confidence*100)
		saveCalibrationProfile(updated, cfg.CalibrationProfile, out)
		return updated, true
	}

	seq := calculatorRegistry[sequentialAlgo]
	if seq == nil {
		return cfg, false
	}
	depth := EstimateOptimalParallelDepth()
	par := calculatorRegistry[parallelAlgo]
	if par == nil {
		depth = 0
	}
	runner := newCalibrationRunner(ctx, cfg.Timeout, CalibrationN, seq, par)
	_, best := runner.findBest(GenerateCandidates(GenerateQuickThresholds(), []int{depth}), nil)
	if best.Duration == maxDuration {
		return cfg, false
	}

	updated = applyCalibration(cfg, best.Threshold, best.ParallelDepth)
	saveCalibrationProfile(updated, cfg.CalibrationProfile, out)
	printCalibrationOutput(updated, out)
	return updated, true
}

// LoadCachedCalibration applies a valid cached profile to cfg.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (updated config.AppConfig, ok bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return cfg, false
	}
	return applyCalibration(cfg, profile.OptimalThreshold, profile.OptimalParallelDepth), true
}

// applyCalibration sets the threshold and, unless one was configured, the
// parallel depth.
func applyCalibration(cfg config.AppConfig, threshold, depth int) config.AppConfig {
	cfg.Threshold = ValidateThreshold(threshold)
	if cfg.ParallelDepth == 0 {
		cfg.ParallelDepth = ValidateParallelDepth(depth)
	}
	return cfg
}

func saveCalibrationProfile(cfg config.AppConfig, profilePath string, out io.Writer) {
	profile := NewProfile()
	profile.OptimalThreshold = cfg.Threshold
	profile.OptimalParallelDepth = cfg.ParallelDepth
	profile.CalibrationN = CalibrationN
	if err := profile.SaveProfile(profilePath); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	}
}
