package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	valid := map[string]zerolog.Level{
		"":         zerolog.WarnLevel,
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		" INFO ":   zerolog.InfoLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range valid {
		got, err := ParseLevel(in)
		require.NoError(t, err, "%q", in)
		assert.Equal(t, want, got, "%q", in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestWriterLoggerFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "test")
	l.Info("done", "algo", "strassen", "n", 512, "bytes", int64(1<<20), "gflops", 1.5, "ok", true)
	l.Error("failed", errors.New("boom"), "n", 3)
	l.Debug("dangling", "orphan")

	out := buf.String()
	for _, want := range []string{
		`"component":"test"`, `"algo":"strassen"`, `"n":512`, `"bytes":1048576`,
		`"gflops":1.5`, `"ok":true`, `"error":"boom"`, `"!BADKEY":"orphan"`,
	} {
		assert.Contains(t, out, want)
	}
}

// Setup replaces the global logger, so this test is not parallel.
func TestSetup(t *testing.T) {
	saved, savedLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = saved
		zerolog.SetGlobalLevel(savedLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "info", true))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	l := NewLogger("app")
	l.Debug("hidden")
	l.Info("shown", "took", 1500*time.Millisecond)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"app"`)
	assert.Contains(t, buf.String(), `"took":1500`)

	assert.Error(t, Setup(&buf, "chatty", true))
}
