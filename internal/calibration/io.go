package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/matcalc/internal/cli"
	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/ui"
)

// printCalibrationResults prints one row per candidate and marks best.
func printCalibrationResults(out io.Writer, results []calibrationResult, best Candidate) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sThreshold\tDepth\tExecution Time%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\t%s\t%s\n", strings.Repeat("─", 9), strings.Repeat("─", 5), strings.Repeat("─", 20))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		if res.Err == nil {
			durationStr = cli.FormatExecutionDuration(res.Duration)
		}
		highlight := ""
		if res.Candidate == best && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%d%s\t%d\t%s%s%s%s\n",
			ui.ColorCyan(), res.Threshold, ui.ColorReset(), res.ParallelDepth,
			ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	_ = tw.Flush()
}

// printCalibrationOutput prints the values chosen by AutoCalibrate.
func printCalibrationOutput(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "%sAuto-calibration%s: threshold=%s%d%s, parallel depth=%s%d%s\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), cfg.Threshold, ui.ColorReset(),
		ui.ColorYellow(), cfg.ParallelDepth, ui.ColorReset())
}
