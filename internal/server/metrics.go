package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// The endpoint's own series live next to the engine's in the default
// registry, so a single scrape returns both.
var (
	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matcalc_server_active_requests",
		Help: "Requests currently being served by the metrics endpoint.",
	})
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matcalc_server_requests_total",
		Help: "Requests served by the metrics endpoint, by path and status code.",
	}, []string{"path", "code"})
	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matcalc_server_request_duration_seconds",
		Help:    "Latency of the metrics endpoint.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"path"})
)

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps next with the security headers, request metrics and a
// debug log line. path is the route pattern, not the raw URL, to keep label
// cardinality fixed.
func (s *Server) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")

		inFlight.Inc()
		defer inFlight.Dec()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		took := time.Since(start)

		requestsTotal.WithLabelValues(path, strconv.Itoa(rec.code)).Inc()
		requestSeconds.WithLabelValues(path).Observe(took.Seconds())
		s.logger.Debug("request served", "method", r.Method, "path", path, "code", rec.code, "duration", took)
	})
}
