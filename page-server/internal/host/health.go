package host

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves /health, /ready and /metrics for the probe port
func (s *Server) HealthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleReady fails while the asset backend is unreachable. Missing models
// are reported but do not fail readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ready"}
	code := http.StatusOK

	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			status["status"] = "not ready"
			status["storage"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if s.predictor != nil {
		status["models"] = s.predictor.Ready()
	}
	writeJSON(w, code, status)
}
