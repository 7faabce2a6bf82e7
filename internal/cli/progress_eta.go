package cli

import (
	"fmt"
	"time"
)

const (
	// etaWarmup is the time before the first estimate is attempted.
	etaWarmup = 100 * time.Millisecond
	// etaMinInterval is the minimum spacing between rate samples.
	etaMinInterval = 50 * time.Millisecond
	// etaSmoothing is the weight of the previous rate in the moving average.
	etaSmoothing = 0.7
	maxETA       = 24 * time.Hour
)

// ProgressWithETA adds a time-remaining estimate to ProgressState. The rate
// is an exponential moving average of the observed progress per second.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64
}

// NewProgressWithETA tracks numCalculators calculators starting now.
func NewProgressWithETA(numCalculators int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numCalculators),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records value for calculator index and returns the average
// progress with the current estimate (0 while there is not enough data).
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()

	now := time.Now()
	if now.Sub(p.startTime) < etaWarmup || progress <= 0.001 {
		p.lastUpdate, p.lastProgress = now, progress
		return progress, 0
	}

	if dt := now.Sub(p.lastUpdate); dt > etaMinInterval {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.progressRate > 0 {
				p.progressRate = etaSmoothing*p.progressRate + (1-etaSmoothing)*delta/dt.Seconds()
			} else {
				p.progressRate = progress / now.Sub(p.startTime).Seconds()
			}
		}
		p.lastUpdate, p.lastProgress = now, progress
	}
	return progress, p.GetETA()
}

// GetETA returns the estimate for the current progress and rate.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if p.progressRate <= 0 || progress >= 1 {
		return 0
	}
	eta := time.Duration((1 - progress) / p.progressRate * float64(time.Second))
	return min(eta, maxETA)
}

// FormatETA renders eta as "< 1s", "45s", "2m30s" or "1h15m"; a
// non-positive eta reads "calculating...".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	default:
		h, m := int(eta.Hours()), int(eta.Minutes())%60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", min(max(progress, 0), 1)*100, progressBar(progress, width), FormatETA(eta))
}
