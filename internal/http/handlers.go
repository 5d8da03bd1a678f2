package http

import (
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The ledger store degrades to empty reads rather than failing, so
	// readiness is about this process, not the backend.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveSessions(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":           int64(time.Since(s.appMetrics.uptime).Seconds()),
		"total_requests":           traceMetrics.TotalRequests,
		"avg_response_time_us":     traceMetrics.AverageResponseTime,
		"mutations":                atomic.LoadInt64(&s.appMetrics.mutations),
		"report_cache_size":        s.reportCache.Size(),
		"report_cache_hits":        atomic.LoadInt64(&s.appMetrics.cacheHits),
		"report_cache_misses":      atomic.LoadInt64(&s.appMetrics.cacheMisses),
		"active_sessions":          s.sessions.ActiveSessions(),
		"rate_limited_clients":     limitMetrics.ClientCount,
		"rate_limit_hits":          limitMetrics.TotalHits,
	})
}
