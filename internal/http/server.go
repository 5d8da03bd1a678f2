package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jaymin91-1/MyAsset/internal/cache"
	"github.com/jaymin91-1/MyAsset/internal/core"
	applog "github.com/jaymin91-1/MyAsset/internal/log"
	"github.com/jaymin91-1/MyAsset/internal/middleware/ratelimit"
	"github.com/jaymin91-1/MyAsset/internal/middleware/trace"
	"github.com/jaymin91-1/MyAsset/internal/services"
	"github.com/jaymin91-1/MyAsset/internal/session"
)

const sessionCookie = "myasset_session"

// RateFetcher provides rate snapshots for the refresh operation.
type RateFetcher interface {
	Fetch(ctx context.Context) core.Snapshot
	Fallback() core.Snapshot
}

// Options configures server construction.
type Options struct {
	Addr         string
	CacheTTL     time.Duration
	CacheMaxSize int
}

type appMetrics struct {
	uptime      time.Time
	mutations   int64
	cacheHits   int64
	cacheMisses int64
}

type Server struct {
	http.Server

	svc      *services.LedgerService
	sessions *session.Manager
	rates    RateFetcher

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	// Report responses are cached per currency and invalidated by
	// bumping the currency's generation on every mutation; stale
	// generations age out through the cache's TTL and LRU eviction.
	reportCache  *cache.LRUCache[json.RawMessage]
	cacheManager *cache.Manager
	genMu        sync.Mutex
	generations  map[string]int64

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, svc *services.LedgerService, sessions *session.Manager, rates RateFetcher, logger *applog.Logger) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.CacheMaxSize <= 0 {
		opts.CacheMaxSize = 100
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: opts.Addr,
		},
		svc:          svc,
		sessions:     sessions,
		rates:        rates,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(clientIP),
		reportCache:  cache.NewLRUCache[json.RawMessage](opts.CacheMaxSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		generations:  make(map[string]int64),
		appMetrics:   appMetrics{uptime: time.Now()},
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("PUT /api/session/currency", s.handleSelectCurrency)
	mux.HandleFunc("POST /api/rates/refresh", s.handleRefreshRates)
	mux.HandleFunc("GET /api/assets", s.handleAssetsOverview)

	mux.HandleFunc("GET /api/ledger", s.handleListRows)
	mux.HandleFunc("POST /api/ledger/rows", s.handleInsertRow)
	mux.HandleFunc("PUT /api/ledger/rows/{id}", s.handleUpdateRow)
	mux.HandleFunc("DELETE /api/ledger/rows", s.handleDeleteRows)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{name}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /api/reports/yearly", s.handleYearlyReport)
	mux.HandleFunc("GET /api/reports/categories", s.handleCategoryReport)
	mux.HandleFunc("GET /api/reports/years", s.handleReportYears)

	handler := http.Handler(mux)
	handler = s.withRateLimit(handler)
	handler = s.tracer.Middleware(handler)
	if logger != nil {
		handler = applog.Middleware(logger)(handler)
	}
	s.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withRateLimit rejects over-eager mutation bursts. Reads stay
// unlimited; a dashboard refresh fans out several report requests.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sessionFor resolves the request's session, issuing a cookie for fresh
// ones. Call before writing the response body. The returned copy is safe
// to read without the manager's lock; writes go through sessions.Update.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, existed := s.sessions.Get(id)
	if !existed {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// cacheKey builds a generation-scoped key for report caching.
func (s *Server) cacheKey(currency, report string, params ...any) string {
	s.genMu.Lock()
	gen := s.generations[currency]
	s.genMu.Unlock()
	key := fmt.Sprintf("%s|g%d|%s", currency, gen, report)
	for _, p := range params {
		key += fmt.Sprintf("|%v", p)
	}
	return key
}

// invalidate bumps a currency's cache generation after a mutation.
func (s *Server) invalidate(currency string) {
	s.genMu.Lock()
	s.generations[currency]++
	s.genMu.Unlock()
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
