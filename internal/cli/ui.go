// Package cli renders the matcalc harness in a terminal: the progress
// spinner fed by the calculators, and the summary of each product.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"

	"github.com/agbru/matcalc/internal/engine"
	"github.com/agbru/matcalc/internal/matrix"
	"github.com/agbru/matcalc/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width of the progress bar in characters.
	ProgressBarWidth = 40
	// PreviewSize is the side of the top-left corner printed for large
	// products.
	PreviewSize = 4
	// VerboseLimit is the largest product printed in full with -v.
	VerboseLimit = 16
)

// FormatExecutionDuration formats d with a unit suited to its magnitude:
// microseconds below a millisecond, milliseconds below a second.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState keeps the last reported progress of each calculator.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

// NewProgressState tracks numCalculators calculators, all at zero.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, numCalculators),
		numCalculators: numCalculators,
	}
}

// Update records value for calculator index, clamped to [0, 1]. Unknown
// indices are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = min(max(value, 0), 1)
}

// CalculateAverage returns the mean progress of all calculators.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

// progressBar renders progress (clamped to [0, 1]) as a bar of length runes.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress shows a spinner with the average progress of
// numCalculators calculators until progressChan is closed, then prints a
// final 100% line. It is meant to run in its own goroutine and calls
// wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan engine.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	label := progressLabel(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label, FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// DisplayResult prints a summary of the product c: its size, checksum and
// trace, then either the whole matrix (verbose, small products) or its
// top-left corner. details adds the timing and the GFLOP/s rate.
func DisplayResult(c *matrix.Matrix, duration time.Duration, verbose, details bool, out io.Writer) {
	elements := uint64(c.N) * uint64(c.N)
	fmt.Fprintf(out, "Result: %s%d×%d%s (%s elements), checksum %s%s%s, trace %s%s%s.\n",
		ui.ColorCyan(), c.N, c.N, ui.ColorReset(),
		humanize.Comma(int64(elements)),
		ui.ColorCyan(), formatFloat(c.Sum()), ui.ColorReset(),
		ui.ColorCyan(), formatFloat(c.Trace()), ui.ColorReset())

	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ui.ColorBold(), ui.ColorReset())
		durationStr := FormatExecutionDuration(duration)
		if duration == 0 {
			durationStr = "< 1µs"
		}
		fmt.Fprintf(out, "Calculation time : %s%s%s\n", ui.ColorGreen(), durationStr, ui.ColorReset())
		if duration > 0 {
			fmt.Fprintf(out, "Throughput       : %s%.2f GFLOP/s%s (classical 2n³ count)\n",
				ui.ColorGreen(), engine.GFLOPS(c.N, duration.Seconds()), ui.ColorReset())
		}
		fmt.Fprintf(out, "Result memory    : %s%s%s\n", ui.ColorCyan(), humanize.IBytes(elements*4), ui.ColorReset())
	}

	if c.N == 0 {
		return
	}
	if verbose && c.N <= VerboseLimit {
		fmt.Fprintf(out, "\n%s--- Product ---%s\n", ui.ColorBold(), ui.ColorReset())
		writeBlock(out, c, c.N)
		return
	}
	k := min(c.N, PreviewSize)
	fmt.Fprintf(out, "\n%s--- Top-left %d×%d ---%s\n", ui.ColorBold(), k, k, ui.ColorReset())
	writeBlock(out, c, k)
	if verbose {
		fmt.Fprintf(out, "(the full product is only printed up to %d×%d)\n", VerboseLimit, VerboseLimit)
	}
}

func writeBlock(out io.Writer, c *matrix.Matrix, k int) {
	for i := range k {
		cells := make([]string, k)
		for j := range k {
			cells[j] = fmt.Sprintf("%10s", formatFloat(float64(c.At(i, j))))
		}
		ellipsis := ""
		if k < c.N {
			ellipsis = " …"
		}
		fmt.Fprintf(out, "%s%s%s%s\n", ui.ColorMagenta(), strings.Join(cells, " "), ui.ColorReset(), ellipsis)
	}
}

// formatFloat prints integral values without a fraction and everything else
// with up to six significant digits.
func formatFloat(x float64) string {
	if x == float64(int64(x)) && x < 1e15 && x > -1e15 {
		return humanize.Comma(int64(x))
	}
	return fmt.Sprintf("%.6g", x)
}
