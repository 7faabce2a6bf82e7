// Package engine exposes the matrix multiplication algorithms behind a common
// Calculator interface. A Calculator wraps a pure multiplication core with the
// cross-cutting concerns shared by every algorithm: input validation,
// tracing, metrics, debug logging and progress reporting.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/matcalc/internal/matrix"
)

var (
	multiplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcalc_multiplications_total",
			Help: "The total number of matrix multiplications processed",
		},
		[]string{"algorithm", "status"},
	)
	multiplicationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matcalc_multiplication_duration_seconds",
			Help:    "The duration of matrix multiplications in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"algorithm"},
	)
)

// Calculator is the interface used by the orchestration layer to run one
// multiplication algorithm.
type Calculator interface {
	// Multiply computes a·b. It is safe for concurrent use and honors ctx
	// cancellation. Progress updates are sent to progressChan without
	// blocking; a nil channel disables them.
	Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error)

	// Name returns the registry name of the algorithm (e.g. "strassen").
	Name() string
}

// ObservableCalculator is a Calculator that can report progress to arbitrary
// observers instead of a single channel.
type ObservableCalculator interface {
	Calculator
	MultiplyWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error)
}

// coreCalculator is a pure multiplication algorithm. Inputs are already
// validated: both matrices are non-nil and square of the same size.
type coreCalculator interface {
	MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error)
	Name() string
}

// MatrixCalculator decorates a coreCalculator with validation, tracing,
// metrics and progress adaptation.
type MatrixCalculator struct {
	core coreCalculator
}

// NewCalculator wraps core. It panics if core is nil.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("engine: the `coreCalculator` implementation cannot be nil")
	}
	return &MatrixCalculator{core: core}
}

// Name delegates to the wrapped core.
func (c *MatrixCalculator) Name() string {
	return c.core.Name()
}

// Multiply adapts progressChan into a ProgressSubject and runs
// MultiplyWithObservers.
func (c *MatrixCalculator) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return c.MultiplyWithObservers(ctx, subject, calcIndex, a, b, opts)
}

// MultiplyWithObservers computes a·b and notifies every observer registered
// on subject. A nil subject discards progress. On success the final progress
// reported is always 1.0.
func (c *MatrixCalculator) MultiplyWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, a, b *matrix.Matrix, opts Options) (result *matrix.Matrix, err error) {
	algoName := c.core.Name()
	n := 0
	if a != nil {
		n = a.N
	}

	ctx, span := otel.Tracer("matcalc/engine").Start(ctx, "Multiply")
	span.SetAttributes(
		attribute.String("algorithm", algoName),
		attribute.Int("n", n),
		attribute.Int("threshold", opts.Threshold),
		attribute.Int("parallel_depth", opts.ParallelDepth),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		multiplicationsTotal.WithLabelValues(algoName, status).Inc()
		multiplicationDuration.WithLabelValues(algoName).Observe(duration)

		log.Debug().
			Str("algo", algoName).
			Int("n", n).
			Float64("duration", duration).
			Str("status", status).
			Msg("multiplication completed")
	}()

	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil operand", matrix.ErrNullBuffer)
	}
	if a.N != b.N || len(a.Data) != a.N*a.N || len(b.Data) != b.N*b.N {
		return nil, fmt.Errorf("%w: %dx%d · %dx%d", matrix.ErrDimensionMismatch, a.N, a.N, b.N, b.N)
	}

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	} else {
		reporter = func(float64) {}
	}

	result, err = c.core.MultiplyCore(ctx, reporter, a, b, normalizeOptions(opts))
	if err == nil && result != nil {
		reporter(1.0)
	}
	return result, err
}
