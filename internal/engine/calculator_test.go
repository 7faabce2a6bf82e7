package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/agbru/matcalc/internal/matrix"
)

// recordingObserver keeps every update it receives.
type recordingObserver struct {
	mu      sync.Mutex
	updates []float64
}

func (o *recordingObserver) Update(_ int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, progress)
}

func (o *recordingObserver) last() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.updates) == 0 {
		return -1
	}
	return o.updates[len(o.updates)-1]
}

func TestAllCalculatorsAgreeWithOracle(t *testing.T) {
	t.Parallel()

	factory := NewDefaultFactory()
	for _, n := range []int{1, 15, 16, 17, 64, 100} {
		a, b := matrix.RandomPair[float32](n, uint64(n), 9)
		want, err := matrix.MultiplyNaive(a, b)
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range factory.List() {
			calc := factory.MustGet(name)
			got, err := calc.Multiply(context.Background(), nil, 0, a, b, Options{})
			if err != nil {
				t.Fatalf("%s N=%d: unexpected error %v", name, n, err)
			}
			if !matrix.EqualWithin(got, want, matrix.DefaultTolerance) {
				t.Errorf("%s N=%d: result differs from the naive product", name, n)
			}
		}
	}
}

func TestMultiplyReportsCompletion(t *testing.T) {
	t.Parallel()

	a, b := matrix.RandomPair[float32](64, 1, 9)
	for _, name := range NewDefaultFactory().List() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			obs := &recordingObserver{}
			subject := NewProgressSubject()
			subject.Register(obs)

			calc := NewDefaultFactory().MustGet(name).(*MatrixCalculator)
			if _, err := calc.MultiplyWithObservers(context.Background(), subject, 3, a, b, Options{}); err != nil {
				t.Fatal(err)
			}
			if obs.last() != 1.0 {
				t.Errorf("last progress = %v, want 1.0", obs.last())
			}
		})
	}
}

func TestMultiplyProgressChannel(t *testing.T) {
	t.Parallel()

	ch := make(chan ProgressUpdate, 1000)
	a, b := matrix.RandomPair[float32](64, 2, 9)
	calc := NewCalculator(StrassenMultiplier{})
	if _, err := calc.Multiply(context.Background(), ch, 7, a, b, Options{}); err != nil {
		t.Fatal(err)
	}
	close(ch)

	var last ProgressUpdate
	count := 0
	for u := range ch {
		if u.CalculatorIndex != 7 {
			t.Errorf("update carries index %d, want 7", u.CalculatorIndex)
		}
		last = u
		count++
	}
	if count == 0 || last.Value != 1.0 {
		t.Errorf("got %d updates ending at %v, want >0 ending at 1.0", count, last.Value)
	}
}

func TestMultiplyValidation(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(NaiveMultiplier{})
	testCases := []struct {
		name    string
		a, b    *matrix.Matrix
		wantErr error
	}{
		{"nil a", nil, matrix.New[float32](2), matrix.ErrNullBuffer},
		{"nil b", matrix.New[float32](2), nil, matrix.ErrNullBuffer},
		{"size mismatch", matrix.New[float32](2), matrix.New[float32](3), matrix.ErrDimensionMismatch},
		{"short data", &matrix.Matrix{N: 3, Data: make([]float32, 4)}, matrix.New[float32](3), matrix.ErrDimensionMismatch},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := calc.Multiply(context.Background(), nil, 0, tc.a, tc.b, Options{})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Multiply() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestMultiplyCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, b := matrix.RandomPair[float32](64, 3, 9)
	for _, name := range NewDefaultFactory().List() {
		calc := NewDefaultFactory().MustGet(name)
		if _, err := calc.Multiply(ctx, nil, 0, a, b, Options{}); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: error = %v, want %v", name, err, context.Canceled)
		}
	}
}

func TestScratchLimitPropagates(t *testing.T) {
	t.Parallel()

	a, b := matrix.RandomPair[float32](64, 4, 9)
	calc := NewCalculator(StrassenMultiplier{})
	_, err := calc.Multiply(context.Background(), nil, 0, a, b, Options{ScratchLimit: 16})
	if !errors.Is(err, matrix.ErrScratchExhausted) {
		t.Errorf("error = %v, want %v", err, matrix.ErrScratchExhausted)
	}
}

func TestNewCalculatorPanicsOnNil(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("NewCalculator(nil) did not panic")
		}
	}()
	NewCalculator(nil)
}

func TestNormalizeOptions(t *testing.T) {
	t.Parallel()

	got := normalizeOptions(Options{Threshold: -1, ParallelDepth: -2})
	if got.Threshold != DefaultThreshold || got.ParallelDepth != 0 {
		t.Errorf("normalizeOptions() = %+v", got)
	}
	got = normalizeOptions(Options{Threshold: 32, ParallelDepth: 1})
	if got.Threshold != 32 || got.ParallelDepth != 1 {
		t.Errorf("normalizeOptions() changed explicit values: %+v", got)
	}
}

func TestGFLOPS(t *testing.T) {
	t.Parallel()
	if got := GFLOPS(1000, 2); got != 1 {
		t.Errorf("GFLOPS(1000, 2s) = %v, want 1", got)
	}
	if got := GFLOPS(10, 0); got <= 0 {
		t.Errorf("GFLOPS with zero duration = %v, want +Inf", got)
	}
}
