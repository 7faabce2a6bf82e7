package server

import (
	"time"

	"github.com/agbru/matcalc/internal/logging"
)

// Option customizes a Server built by NewServer.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger. nil keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeouts overrides the HTTP and shutdown timeouts. Zero fields keep
// their default.
func WithTimeouts(t Timeouts) Option {
	return func(s *Server) {
		s.timeouts = s.timeouts.merge(t)
	}
}

// Timeouts of the metrics endpoint. ShutdownTimeout bounds Serve's graceful
// stop; the rest map onto http.Server.
type Timeouts struct {
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// DefaultServerTimeouts suits a scrape endpoint polled every few seconds.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		ShutdownTimeout: 5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     time.Minute,
	}
}

func (t Timeouts) merge(o Timeouts) Timeouts {
	pick := func(base, override time.Duration) time.Duration {
		if override > 0 {
			return override
		}
		return base
	}
	return Timeouts{
		ShutdownTimeout: pick(t.ShutdownTimeout, o.ShutdownTimeout),
		ReadTimeout:     pick(t.ReadTimeout, o.ReadTimeout),
		WriteTimeout:    pick(t.WriteTimeout, o.WriteTimeout),
		IdleTimeout:     pick(t.IdleTimeout, o.IdleTimeout),
	}
}
