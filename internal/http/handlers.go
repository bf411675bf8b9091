package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"budgetapi/internal/log"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusResponse{
		Message: s.name + " is running",
		Status:  "healthy",
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type metric struct {
	name  string
	value any
}

// handleMetrics renders counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	counters := []metric{
		{"budgetapi_http_requests_total", tm.TotalRequests},
		{"budgetapi_http_client_errors_total", tm.ClientErrors},
		{"budgetapi_http_server_errors_total", tm.ServerErrors},
		{"budgetapi_http_response_time_avg_microseconds", tm.AverageResponseTime},
		{"budgetapi_login_rate_limited_total", rl.TotalHits},
		{"budgetapi_login_rate_limit_clients", rl.ClientCount},
		{"budgetapi_security_suspicious_requests_total", sec.SuspiciousRequests},
		{"budgetapi_security_invalid_ip_total", sec.InvalidIPAttempts},
		{"budgetapi_uptime_seconds", int64(time.Since(s.started).Seconds())},
	}
	if s.cacheStats != nil {
		cs := s.cacheStats()
		counters = append(counters,
			metric{"budgetapi_overview_cache_hits_total", cs.Hits},
			metric{"budgetapi_overview_cache_misses_total", cs.Misses},
			metric{"budgetapi_overview_cache_evictions_total", cs.Evictions},
			metric{"budgetapi_overview_cache_entries", cs.Size},
		)
	}

	for _, c := range counters {
		fmt.Fprintf(w, "%s %v\n", c.name, c.value)
	}
}
