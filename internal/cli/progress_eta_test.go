package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressWithETAStartsEmpty(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(3)

	require.NotNil(t, p.ProgressState)
	assert.Equal(t, 3, p.numCalculators)
	assert.Zero(t, p.progressRate)
	assert.False(t, p.startTime.IsZero())
	assert.Zero(t, p.GetETA(), "no rate yet")
}

func TestUpdateWithETAAveragesCalculators(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(4)

	steps := []struct {
		index int
		value float64
		want  float64
	}{
		{0, 1, 0.25},
		{1, 0.5, 0.375},
		{1, 1, 0.5},
		{7, 1, 0.5}, // unknown index leaves the state alone
		{-1, 1, 0.5},
		{2, 3, 0.75}, // clamped to 1
	}
	for _, s := range steps {
		got, eta := p.UpdateWithETA(s.index, s.value)
		assert.InDelta(t, s.want, got, 1e-12, "after Update(%d, %v)", s.index, s.value)
		assert.GreaterOrEqual(t, eta, time.Duration(0))
	}
}

func TestUpdateWithETAWarmup(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)

	_, eta := p.UpdateWithETA(0, 0.5)
	assert.Zero(t, eta, "estimate during warm-up")
	assert.Zero(t, p.progressRate)
}

func TestUpdateWithETAEstimatesAfterWarmup(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	p.startTime = time.Now().Add(-2 * time.Second)
	p.lastUpdate = p.startTime

	_, eta := p.UpdateWithETA(0, 0.5)
	require.Greater(t, p.progressRate, 0.0)
	// Half done in about two seconds leaves about two seconds.
	assert.InDelta(t, (2 * time.Second).Seconds(), eta.Seconds(), 0.5)
}

func TestGetETA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		progress float64
		rate     float64
		want     time.Duration
	}{
		{"half done at 10%/s", 0.5, 0.1, 5 * time.Second},
		{"quarter done at 25%/s", 0.25, 0.25, 3 * time.Second},
		{"finished", 1, 0.5, 0},
		{"no rate", 0.5, 0, 0},
		{"slow rate is capped", 0.001, 1e-9, maxETA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewProgressWithETA(1)
			p.Update(0, tt.progress)
			p.progressRate = tt.rate
			assert.InDelta(t, tt.want.Seconds(), p.GetETA().Seconds(), 0.01)
		})
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]string{
		-time.Minute:                  "calculating...",
		0:                             "calculating...",
		999 * time.Millisecond:        "< 1s",
		time.Second:                   "1s",
		59 * time.Second:              "59s",
		time.Minute:                   "1m",
		4*time.Minute + 5*time.Second: "4m5s",
		time.Hour:                     "1h",
		2*time.Hour + 30*time.Minute:  "2h30m",
		26 * time.Hour:                "26h",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatETA(in), "FormatETA(%v)", in)
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "  0.00% [░░░░] ETA: 1m", FormatProgressBarWithETA(0, time.Minute, 4))
	assert.Equal(t, " 50.00% [██░░] ETA: 30s", FormatProgressBarWithETA(0.5, 30*time.Second, 4))
	assert.Equal(t, "100.00% [████] ETA: calculating...", FormatProgressBarWithETA(1, 0, 4))
	assert.Equal(t, "100.00% [████] ETA: < 1s", FormatProgressBarWithETA(2, time.Millisecond, 4))
}
