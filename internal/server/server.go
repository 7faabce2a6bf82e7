// Package server exposes the observability endpoints of a matcalc run:
// Prometheus metrics, a health check and the list of registered algorithms.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/logging"
)

// AlgorithmLister lists the registered algorithm names.
type AlgorithmLister interface {
	List() []string
}

// Server is the metrics HTTP server started by -metrics-addr. It lives for
// the duration of a run and shuts down gracefully when its context ends.
type Server struct {
	addr       string
	algorithms AlgorithmLister
	httpServer *http.Server
	logger     logging.Logger
	scrape     http.Handler
	timeouts   Timeouts
	startedAt  time.Time

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server bound to addr (e.g. ":9090"). algorithms may be
// nil, in which case /algorithms returns an empty list.
func NewServer(addr string, algorithms AlgorithmLister, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		algorithms: algorithms,
		logger:     logging.NewLogger("server"),
		scrape:     promhttp.Handler(),
		timeouts:   DefaultServerTimeouts(),
		startedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	for path, h := range map[string]http.HandlerFunc{
		"/health":     s.handleHealth,
		"/algorithms": s.handleAlgorithms,
		"/metrics":    s.scrape.ServeHTTP,
	} {
		mux.Handle(path, s.instrument(path, s.getOnly(h)))
	}

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: s.timeouts.ReadTimeout,
		ReadTimeout:       s.timeouts.ReadTimeout,
		WriteTimeout:      s.timeouts.WriteTimeout,
		IdleTimeout:       s.timeouts.IdleTimeout,
	}
	return s
}

// Handler returns the request multiplexer with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured address. It is separate from Serve so callers
// can learn the bound address (Addr) before serving starts.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return apperrors.NewServerError("failed to listen on "+s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Serve handles requests until ctx is done, then shuts down within
// ShutdownTimeout. Listen is called first when it has not been.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		ln = s.listener
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("metrics server started", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return apperrors.NewServerError("metrics server failed", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}

// Start is Listen followed by Serve.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}
