package calibration

import (
	"context"
	"errors"
	"time"

	"github.com/agbru/matcalc/internal/engine"
	"github.com/agbru/matcalc/internal/matrix"
)

// CalibrationN is the side of the matrices timed by a full calibration.
const CalibrationN = 512

const maxDuration = time.Duration(1<<63 - 1)

var errMissingCalculator = errors.New("calibration: calculator not registered")

// calibrationResult is the timing of one candidate.
type calibrationResult struct {
	Candidate
	Duration time.Duration
	Err      error
}

// calibrationRunner times candidates on a fixed pair of inputs, each trial
// bounded by perTrial. Depth-zero candidates run on seq, the others on par.
type calibrationRunner struct {
	ctx      context.Context
	perTrial time.Duration
	a, b     *matrix.Matrix
	seq, par engine.Calculator
}

func newCalibrationRunner(ctx context.Context, timeout time.Duration, n int, seq, par engine.Calculator) *calibrationRunner {
	a, b := matrix.RandomPair[float32](n, 1, 9)
	return &calibrationRunner{
		ctx:      ctx,
		perTrial: max(timeout/6, 2*time.Second),
		a:        a,
		b:        b,
		seq:      seq,
		par:      par,
	}
}

// calculatorFor returns the calculator honoring c.ParallelDepth, or nil.
func (r *calibrationRunner) calculatorFor(c Candidate) engine.Calculator {
	if c.ParallelDepth == 0 {
		return r.seq
	}
	return r.par
}

// runTrial multiplies the runner's inputs once with the configuration c.
func (r *calibrationRunner) runTrial(c Candidate) (time.Duration, error) {
	calc := r.calculatorFor(c)
	if calc == nil {
		return 0, errMissingCalculator
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	start := time.Now()
	_, err := calc.Multiply(ctx, nil, 0, r.a, r.b, engine.Options{Threshold: c.Threshold, ParallelDepth: c.ParallelDepth})
	return time.Since(start), err
}

// findBest times every candidate and returns all results with the fastest
// one. best.Duration is maxDuration when nothing succeeded. progress, if not
// nil, is called after each candidate with the fraction done.
func (r *calibrationRunner) findBest(candidates []Candidate, progress func(float64)) (results []calibrationResult, best calibrationResult) {
	best.Duration = maxDuration
	for i, c := range candidates {
		if r.ctx.Err() != nil {
			break
		}
		d, err := r.runTrial(c)
		res := calibrationResult{Candidate: c, Duration: d, Err: err}
		results = append(results, res)
		if err == nil && d < best.Duration {
			best = res
		}
		if progress != nil {
			progress(float64(i+1) / float64(len(candidates)))
		}
	}
	return results, best
}
