package server

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// AlgorithmsResponse is the body of GET /algorithms.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// getOnly answers anything but GET and HEAD with a JSON 405.
func (s *Server) getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}
		w.Header().Set("Allow", "GET, HEAD")
		s.reply(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   http.StatusText(http.StatusMethodNotAllowed),
			Message: r.Method + " is not supported on " + r.URL.Path,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.reply(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	if s.algorithms != nil {
		names = append(names, s.algorithms.List()...)
	}
	s.reply(w, http.StatusOK, AlgorithmsResponse{Algorithms: names})
}

func (s *Server) reply(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}
