// Package logging configures the process-wide zerolog logger from the
// -log-level setting and hands out component loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel keeps the log quiet; progress and timings go to the terminal
// UI instead.
const DefaultLevel = "warn"

// Logger is what injected components log through. Fields are alternating
// key/value pairs: logger.Info("started", "addr", addr, "n", 512).
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, err error, kv ...any)
}

type componentLogger struct {
	zl zerolog.Logger
}

func (c componentLogger) Debug(msg string, kv ...any) { withFields(c.zl.Debug(), kv).Msg(msg) }
func (c componentLogger) Info(msg string, kv ...any)  { withFields(c.zl.Info(), kv).Msg(msg) }
func (c componentLogger) Error(msg string, err error, kv ...any) {
	withFields(c.zl.Error().Err(err), kv).Msg(msg)
}

// withFields attaches kv to e. A trailing key without a value is logged
// under "!BADKEY" rather than dropped.
func withFields(e *zerolog.Event, kv []any) *zerolog.Event {
	if len(kv) == 0 {
		return e
	}
	if len(kv)%2 == 1 {
		kv = append(kv[:len(kv)-1:len(kv)-1], "!BADKEY", kv[len(kv)-1])
	}
	return e.Fields(kv)
}

// NewLogger derives a Logger from the global zerolog logger, tagged with
// component. Call it after Setup.
func NewLogger(component string) Logger {
	return componentLogger{zl: log.Logger.With().Str("component", component).Logger()}
}

// NewWriterLogger returns a Logger writing JSON lines to w.
func NewWriterLogger(w io.Writer, component string) Logger {
	return componentLogger{zl: zerolog.New(w).With().Str("component", component).Timestamp().Logger()}
}

// ParseLevel maps trace, debug, info, warn, error or disabled to a zerolog
// level. Case and surrounding spaces are ignored; "" means DefaultLevel.
func ParseLevel(level string) (zerolog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		name = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err == nil && lvl == zerolog.NoLevel {
		err = fmt.Errorf("no level named %q", name)
	}
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Setup installs the global zerolog logger. A terminal w gets the console
// writer, anything else JSON lines.
func Setup(w io.Writer, level string, noColor bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
