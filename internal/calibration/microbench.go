package calibration

import (
	"context"
	"time"

	"github.com/agbru/matcalc/internal/matrix"
)

const (
	// MicroBenchSize is the side of the matrices timed by QuickCalibrate.
	MicroBenchSize = 128
	// MicroBenchIterations is the number of timed runs per candidate; the
	// fastest one counts.
	MicroBenchIterations = 3
	// MicroBenchTimeout bounds the whole micro-benchmark.
	MicroBenchTimeout = 250 * time.Millisecond
)

// MicroBenchmark times the Strassen kernel directly on small matrices to
// pick a cut-off in a fraction of a second.
type MicroBenchmark struct {
	Size       int
	Thresholds []int
	Iterations int
	Timeout    time.Duration
}

// ThresholdResults is the outcome of a micro-benchmark.
type ThresholdResults struct {
	// Threshold is the fastest cut-off measured.
	Threshold int
	// ParallelDepth is the heuristic depth for this machine.
	ParallelDepth int
	// Confidence ranges from 0 (nothing measured) to 1.
	Confidence float64
	Duration   time.Duration
}

type microResult struct {
	threshold int
	best      time.Duration
	err       error
}

// NewMicroBenchmark returns a MicroBenchmark with the default settings.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		Size:       MicroBenchSize,
		Thresholds: GenerateQuickThresholds(),
		Iterations: MicroBenchIterations,
		Timeout:    MicroBenchTimeout,
	}
}

// RunQuick times every candidate threshold one after the other and analyzes
// the results. Candidates left when the timeout expires count as failures.
func (mb *MicroBenchmark) RunQuick(ctx context.Context) (ThresholdResults, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, mb.Timeout)
	defer cancel()

	a, b := matrix.RandomPair[float32](mb.Size, 1, 9)
	c := matrix.New[float32](mb.Size)

	results := make([]microResult, 0, len(mb.Thresholds))
	for _, t := range mb.Thresholds {
		results = append(results, mb.runSingle(ctx, a, b, c, t))
	}

	tr := mb.analyzeResults(results)
	tr.Duration = time.Since(start)
	return tr, nil
}

func (mb *MicroBenchmark) runSingle(ctx context.Context, a, b, c *matrix.Matrix, threshold int) microResult {
	res := microResult{threshold: threshold}
	n := matrix.PaddedSize(mb.Size, threshold)
	if n != mb.Size {
		res.err = matrix.ErrInvalidSize
		return res
	}
	opts := matrix.Options{Threshold: threshold}
	for i := 0; i < max(mb.Iterations, 1); i++ {
		begin := time.Now()
		if err := matrix.Multiply(ctx, a.View(), b.View(), c.View(), n, opts); err != nil {
			res.err = err
			return res
		}
		if d := time.Since(begin); res.best == 0 || d < res.best {
			res.best = d
		}
	}
	return res
}

// analyzeResults picks the fastest threshold. Confidence grows with the
// share of candidates measured and with the gap between best and worst.
func (mb *MicroBenchmark) analyzeResults(results []microResult) ThresholdResults {
	tr := ThresholdResults{
		Threshold:     EstimateOptimalThreshold(),
		ParallelDepth: EstimateOptimalParallelDepth(),
	}

	var best, worst time.Duration
	measured := 0
	for _, r := range results {
		if r.err != nil {
			continue
		}
		measured++
		if best == 0 || r.best < best {
			best, tr.Threshold = r.best, r.threshold
		}
		worst = max(worst, r.best)
	}
	if measured == 0 {
		return tr
	}

	tr.Confidence = 0.5 * float64(measured) / float64(len(results))
	if measured > 1 && best*20 <= worst*19 {
		tr.Confidence += 0.5
	} else {
		tr.Confidence += 0.2
	}
	return tr
}

// QuickCalibrate runs the default micro-benchmark.
func QuickCalibrate(ctx context.Context) (ThresholdResults, error) {
	return NewMicroBenchmark().RunQuick(ctx)
}
