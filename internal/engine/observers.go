package engine

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ProgressObserver receives the normalized progress of calculator calcIndex.
type ProgressObserver interface {
	Update(calcIndex int, progress float64)
}

// ProgressSubject fans progress out to its observers in registration order.
// Notify never takes a lock: observers live in a copy-on-write slice.
type ProgressSubject struct {
	observers atomic.Pointer[[]ProgressObserver]
	mu        sync.Mutex // serializes Register
}

// NewProgressSubject returns a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register appends observers, skipping nil ones.
func (s *ProgressSubject) Register(observers ...ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []ProgressObserver
	if cur := s.observers.Load(); cur != nil {
		next = append(next, *cur...)
	}
	for _, o := range observers {
		if o != nil {
			next = append(next, o)
		}
	}
	s.observers.Store(&next)
}

// Notify forwards one progress value to every registered observer.
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	cur := s.observers.Load()
	if cur == nil {
		return
	}
	for _, o := range *cur {
		o.Update(calcIndex, progress)
	}
}

// AsProgressReporter binds the subject to one calculator.
func (s *ProgressSubject) AsProgressReporter(calcIndex int) ProgressReporter {
	return func(progress float64) { s.Notify(calcIndex, progress) }
}

// ChannelObserver feeds the progress display. Sends never block: an update
// is dropped while the channel is full, and a nil channel drops everything.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver returns an observer that sends updates to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update sends the update without blocking. It is dropped when ch is full.
func (o *ChannelObserver) Update(calcIndex int, progress float64) {
	if o.ch == nil {
		return
	}
	select {
	case o.ch <- ProgressUpdate{CalculatorIndex: calcIndex, Value: min(progress, 1)}:
	default:
	}
}

// LoggingObserver writes a debug event each time a calculator enters a new
// progress bucket of width step, plus one on completion.
type LoggingObserver struct {
	logger zerolog.Logger
	step   float64

	mu      sync.Mutex
	buckets map[int]int
}

// NewLoggingObserver logs every step of progress; step <= 0 means 0.1.
func NewLoggingObserver(logger zerolog.Logger, step float64) *LoggingObserver {
	if step <= 0 {
		step = 0.1
	}
	return &LoggingObserver{logger: logger, step: step, buckets: make(map[int]int)}
}

// Update logs when progress enters a new step, and once on completion.
func (o *LoggingObserver) Update(calcIndex int, progress float64) {
	bucket := int(math.Floor(progress / o.step))
	if progress >= 1 {
		bucket = math.MaxInt
	}

	o.mu.Lock()
	last, seen := o.buckets[calcIndex]
	if seen && bucket <= last {
		o.mu.Unlock()
		return
	}
	o.buckets[calcIndex] = bucket
	o.mu.Unlock()

	o.logger.Debug().
		Int("calculator", calcIndex).
		Str("percent", strconv.FormatFloat(progress*100, 'f', 1, 64)+"%").
		Msg("multiplication progress")
}

var progressGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "matcalc_multiplication_progress",
	Help: "Progress of the running multiplications, from 0 to 1.",
}, []string{"calculator_index"})

// MetricsObserver mirrors progress into the matcalc_multiplication_progress
// gauge.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver returns an observer exporting progress as a gauge.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge}
}

// Update sets the gauge of the calculator at calcIndex.
func (o *MetricsObserver) Update(calcIndex int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(calcIndex)).Set(progress)
}

// ResetMetrics drops the series of the previous run.
func (o *MetricsObserver) ResetMetrics() {
	o.gauge.Reset()
}
