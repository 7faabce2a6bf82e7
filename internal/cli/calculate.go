package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"

	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	"github.com/agbru/matcalc/internal/ui"
)

// CalculatorSource is the part of engine.CalculatorFactory used to pick
// the calculators of a run.
type CalculatorSource interface {
	List() []string
	Get(name string) (engine.Calculator, error)
}

// GetCalculatorsToRun returns the calculators selected by cfg.Algo, sorted
// by name when "all" is selected.
func GetCalculatorsToRun(cfg config.AppConfig, factory CalculatorSource) []engine.Calculator {
	if cfg.Algo == config.DefaultAlgo {
		keys := factory.List()
		calculators := make([]engine.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(cfg.Algo); err == nil {
		return []engine.Calculator{calc}
	}
	return nil
}

// PrintExecutionConfig describes the run about to start.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Multiplying two %s%d×%d%s matrices (entries 0..%d, seed %d) with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.N, cfg.N, ui.ColorReset(), cfg.MaxValue, cfg.Seed,
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Strassen threshold: %s%d%s, parallel depth: %s%d%s, tolerance: %s%g%s.\n",
		ui.ColorCyan(), cfg.Threshold, ui.ColorReset(),
		ui.ColorCyan(), cfg.ParallelDepth, ui.ColorReset(),
		ui.ColorCyan(), cfg.Tolerance, ui.ColorReset())
	if cfg.ScratchLimit > 0 {
		fmt.Fprintf(out, "Scratch budget: %s%s%s.\n", ui.ColorCyan(), humanize.IBytes(uint64(cfg.ScratchLimit)), ui.ColorReset())
	}
}

// PrintExecutionMode announces whether one or several algorithms run.
func PrintExecutionMode(calculators []engine.Calculator, jobs int, out io.Writer) {
	var modeDesc string
	switch {
	case len(calculators) == 1:
		modeDesc = fmt.Sprintf("Single multiplication with the %s%s%s algorithm",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	case jobs > 1:
		modeDesc = fmt.Sprintf("Comparison of %d algorithms, %d at a time", len(calculators), jobs)
	default:
		modeDesc = fmt.Sprintf("Comparison of %d algorithms, one after the other", len(calculators))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
