// Package orchestration runs the selected multiplication algorithms on a
// shared pair of random inputs, checks every product against the naive
// oracle and reports the verdict.
package orchestration

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/matcalc/internal/cli"
	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/matrix"
)

// CalculationResult is the outcome of one algorithm on the run's inputs.
type CalculationResult struct {
	// Name is the registered algorithm name.
	Name string
	// Result is the product, nil when Err is set.
	Result *matrix.Matrix
	// Duration is the wall-clock time of the multiplication.
	Duration time.Duration
	// Err is the failure of the algorithm, if any.
	Err error
}

// ProgressBufferMultiplier sizes the progress channel per calculator so that
// a slow terminal rarely blocks a calculator.
const ProgressBufferMultiplier = 5

// Inputs is the pair of operands shared by every algorithm of a run.
type Inputs struct {
	A, B *matrix.Matrix
	// Seed is the generator seed actually used.
	Seed uint64
}

// GenerateInputs draws the run's operands from cfg.Seed, or from a
// time-based seed when cfg.Seed is zero.
func GenerateInputs(cfg config.AppConfig) Inputs {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	a, b := matrix.RandomPair[float32](cfg.N, seed, cfg.MaxValue)
	return Inputs{A: a, B: b, Seed: seed}
}

// EnsureOracle appends oracle to calculators unless an algorithm with the
// same name is already selected, so that every run can be verified.
func EnsureOracle(calculators []engine.Calculator, oracle engine.Calculator) []engine.Calculator {
	if oracle == nil {
		return calculators
	}
	if slices.ContainsFunc(calculators, func(c engine.Calculator) bool { return c.Name() == oracle.Name() }) {
		return calculators
	}
	return append(slices.Clip(calculators), oracle)
}

// ExecuteCalculations multiplies in.A by in.B with every calculator, at most
// cfg.Jobs at a time, while progress is rendered to out. Results keep the
// order of calculators. A failing calculator does not stop the others.
func ExecuteCalculations(ctx context.Context, calculators []engine.Calculator, in Inputs, cfg config.AppConfig, out io.Writer) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan engine.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	opts := cfg.ToEngineOptions()
	metrics := engine.NewMetricsObserver()
	metrics.ResetMetrics()
	logger := engine.NewLoggingObserver(log.Logger, 0.25)
	for i, calc := range calculators {
		g.Go(func() error {
			startTime := time.Now()
			res, err := multiply(ctx, calc, progressChan, i, in, opts, metrics, logger)
			results[i] = CalculationResult{
				Name: calc.Name(), Result: res, Duration: time.Since(startTime),
				Err: apperrors.NewMultiplicationError(calc.Name(), in.A.N, err),
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// multiply runs calc, fanning progress out to the display channel and to the
// shared observers when calc supports them.
func multiply(ctx context.Context, calc engine.Calculator, progressChan chan<- engine.ProgressUpdate, i int, in Inputs, opts engine.Options, observers ...engine.ProgressObserver) (*matrix.Matrix, error) {
	oc, ok := calc.(engine.ObservableCalculator)
	if !ok {
		return calc.Multiply(ctx, progressChan, i, in.A, in.B, opts)
	}
	subject := engine.NewProgressSubject()
	subject.Register(engine.NewChannelObserver(progressChan))
	subject.Register(observers...)
	return oc.MultiplyWithObservers(ctx, subject, i, in.A, in.B, opts)
}
