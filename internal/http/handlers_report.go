package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

type monthFlowDTO struct {
	Month   int   `json:"month"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

type yearFlowDTO struct {
	Year    int   `json:"year"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

type categoryAmountDTO struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// yearParam reads the year query parameter, defaulting to the current
// year. A malformed value is reported, not silently coerced.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year: "+raw)
		return 0, false
	}
	return year, true
}

// cachedReport serves a report out of the generation-scoped cache,
// building and storing it on a miss.
func (s *Server) cachedReport(w http.ResponseWriter, key string, build func() any) {
	if body, ok := s.reportCache.Get(key); ok {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		writeRawJSON(w, http.StatusOK, body)
		return
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	body, err := json.Marshal(build())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.reportCache.Set(key, body)
	writeRawJSON(w, http.StatusOK, body)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	s.cachedReport(w, s.cacheKey(currency, "monthly", year), func() any {
		flows := core.MonthlyFlows(s.svc.Load(r.Context(), currency), year)
		months := make([]monthFlowDTO, len(flows))
		for i, f := range flows {
			months[i] = monthFlowDTO{Month: f.Month, Income: f.Income, Expense: f.Expense}
		}
		return map[string]any{
			"currency": currency,
			"year":     year,
			"months":   months,
		}
	})
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}

	s.cachedReport(w, s.cacheKey(currency, "yearly"), func() any {
		flows := core.YearlyFlows(s.svc.Load(r.Context(), currency))
		years := make([]yearFlowDTO, len(flows))
		for i, f := range flows {
			years[i] = yearFlowDTO{Year: f.Year, Income: f.Income, Expense: f.Expense}
		}
		return map[string]any{
			"currency": currency,
			"years":    years,
		}
	})
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	s.cachedReport(w, s.cacheKey(currency, "categories", year), func() any {
		byCategory := core.ExpenseByCategory(s.svc.Load(r.Context(), currency), year)
		cats := make([]categoryAmountDTO, len(byCategory))
		var total int64
		for i, c := range byCategory {
			cats[i] = categoryAmountDTO{Name: c.Name, Amount: c.Amount}
			total += c.Amount
		}
		return map[string]any{
			"currency":   currency,
			"year":       year,
			"categories": cats,
			"total":      total,
		}
	})
}

func (s *Server) handleReportYears(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}

	years := core.Years(s.svc.Load(r.Context(), currency))
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency": currency,
		"years":    years,
	})
}
