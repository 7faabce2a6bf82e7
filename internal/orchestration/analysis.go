package orchestration

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/agbru/matcalc/internal/cli"
	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/matrix"
	"github.com/agbru/matcalc/internal/ui"
)

// Status messages of a run.
const (
	MatchMessage    = "OK: results match"
	MismatchMessage = "MISMATCH"
)

// Verdict is the comparison of one result against the reference product.
type Verdict struct {
	CalculationResult
	// Compared is false when the algorithm failed.
	Compared bool
	// Comparison is the element-wise check against the reference.
	Comparison matrix.Comparison
}

// Verification is the outcome of checking every result of a run.
type Verification struct {
	// Reference names the result the others were compared to: the naive
	// oracle when it succeeded, otherwise the first successful result.
	Reference string
	Verdicts  []Verdict
	// Match is true when every successful result agrees with the reference.
	Match bool
	// FirstError is the first algorithm failure, if any.
	FirstError error
}

// Verify compares every successful result to the reference within tol.
func Verify(results []CalculationResult, tol float64) Verification {
	v := Verification{Match: true, Verdicts: make([]Verdict, len(results))}

	var ref *matrix.Matrix
	for _, res := range results {
		if res.Err == nil && res.Name == engine.OracleName {
			ref, v.Reference = res.Result, res.Name
		}
	}
	for i, res := range results {
		v.Verdicts[i].CalculationResult = res
		if res.Err != nil {
			if v.FirstError == nil {
				v.FirstError = res.Err
			}
			continue
		}
		if ref == nil {
			ref, v.Reference = res.Result, res.Name
		}
	}
	for i := range v.Verdicts {
		vd := &v.Verdicts[i]
		if vd.Err != nil {
			continue
		}
		cmp, err := matrix.Compare(vd.Result, ref, tol)
		if err != nil {
			cmp = matrix.Comparison{MaxAbsDiff: math.Inf(1), Row: -1, Col: -1}
		}
		vd.Compared, vd.Comparison = true, cmp
		if !cmp.Equal {
			v.Match = false
		}
	}
	return v
}

// AnalyzeComparisonResults prints the comparison table and the verdict of the
// run, then displays the reference product. It returns the exit code:
// ExitErrorMismatch when a product disagrees, the code of the first failure
// when an algorithm failed, ExitSuccess otherwise.
func AnalyzeComparisonResults(results []CalculationResult, cfg config.AppConfig, out io.Writer) int {
	v := Verify(results, cfg.Tolerance)

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm\tDuration\tRate\tMax |diff|\tStatus%s\n", ui.ColorBold(), ui.ColorReset())
	for _, vd := range v.Verdicts {
		duration := cli.FormatExecutionDuration(vd.Duration)
		if vd.Duration == 0 {
			duration = "< 1µs"
		}
		rate, diff, status := "-", "-", ""
		switch {
		case vd.Err != nil:
			status = fmt.Sprintf("%sFailure (%v)%s", ui.ColorRed(), vd.Err, ui.ColorReset())
		case vd.Comparison.Equal:
			rate = formatRate(cfg.N, vd.Duration.Seconds())
			diff = fmt.Sprintf("%.3g", vd.Comparison.MaxAbsDiff)
			status = fmt.Sprintf("%sOK%s", ui.ColorGreen(), ui.ColorReset())
		default:
			rate = formatRate(cfg.N, vd.Duration.Seconds())
			diff = fmt.Sprintf("%.3g", vd.Comparison.MaxAbsDiff)
			status = fmt.Sprintf("%sMismatch at (%d,%d)%s", ui.ColorRed(), vd.Comparison.Row, vd.Comparison.Col, ui.ColorReset())
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\t%s\n",
			ui.ColorBlue(), vd.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			rate, diff, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if v.Reference == "" {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the multiplication.\n")
		return apperrors.HandleCalculationError(v.FirstError, 0, out, ui.Palette{})
	}
	if v.Reference != engine.OracleName {
		fmt.Fprintf(out, "\nWarning: the %s oracle did not complete; results were compared to %s.\n", engine.OracleName, v.Reference)
	}
	if !v.Match {
		fmt.Fprintf(out, "\n%s%s%s: at least one product differs from %s by more than %g.\n",
			ui.ColorRed(), MismatchMessage, ui.ColorReset(), v.Reference, cfg.Tolerance)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorGreen(), MatchMessage, ui.ColorReset())
	if v.FirstError != nil {
		return apperrors.HandleCalculationError(v.FirstError, 0, out, ui.Palette{})
	}
	for _, vd := range v.Verdicts {
		if vd.Name == v.Reference {
			cli.DisplayResult(vd.Result, vd.Duration, cfg.Verbose, cfg.Details, out)
			break
		}
	}
	return apperrors.ExitSuccess
}

// formatRate renders the classical 2n³ FLOP count over seconds with an SI
// prefix, e.g. "12.3 GFLOP/s".
func formatRate(n int, seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return humanize.SIWithDigits(engine.GFLOPS(n, seconds)*1e9, 1, "FLOP/s")
}
