package http

import (
	"net/http"
	"slices"
	"sync/atomic"

	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/services"
)

type rowRequest struct {
	Currency string `json:"currency"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	// Amount accepts a JSON number or free text with grouping commas.
	Amount any    `json:"amount"`
	Memo   string `json:"memo"`
}

func (req rowRequest) input() services.RowInput {
	return services.RowInput{
		Date:     req.Date,
		Kind:     req.Kind,
		Category: req.Category,
		Amount:   req.Amount,
		Memo:     req.Memo,
	}
}

// currencyFor picks the request's currency: explicit value first, the
// session's active currency otherwise. Unknown codes are rejected.
func (s *Server) currencyFor(w http.ResponseWriter, r *http.Request, explicit, sessionCurrency string) (string, bool) {
	currency := explicit
	if currency == "" {
		currency = sessionCurrency
	}
	if !slices.Contains(s.svc.Currencies(), currency) {
		writeError(w, http.StatusBadRequest, "unknown currency: "+currency)
		return "", false
	}
	return currency, true
}

func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}

	ledger := s.svc.Load(r.Context(), currency)

	rows := make([]rowDTO, 0, len(ledger.Rows))
	for _, row := range ledger.Rows {
		rows = append(rows, toRowDTO(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":    currency,
		"rows":        rows,
		"net_balance": core.NetBalance(ledger),
	})
}

func (s *Server) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req rowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	currency, ok := s.currencyFor(w, r, req.Currency, sess.Currency)
	if !ok {
		return
	}

	row, err := s.svc.Insert(r.Context(), currency, req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.recordMutation(currency)
	writeJSON(w, http.StatusCreated, toRowDTO(row))
}

func (s *Server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req rowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	currency, ok := s.currencyFor(w, r, req.Currency, sess.Currency)
	if !ok {
		return
	}

	row, err := s.svc.Update(r.Context(), currency, r.PathValue("id"), req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.recordMutation(currency)
	writeJSON(w, http.StatusOK, toRowDTO(row))
}

func (s *Server) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req struct {
		Currency string   `json:"currency"`
		IDs      []string `json:"ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}
	currency, ok := s.currencyFor(w, r, req.Currency, sess.Currency)
	if !ok {
		return
	}

	deleted, err := s.svc.Delete(r.Context(), currency, req.IDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if deleted > 0 {
		s.recordMutation(currency)
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (s *Server) recordMutation(currency string) {
	atomic.AddInt64(&s.appMetrics.mutations, 1)
	s.invalidate(currency)
}
