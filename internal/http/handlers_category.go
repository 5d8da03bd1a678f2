package http

import (
	"net/http"

	"github.com/jaymin91-1/MyAsset/internal/session"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currency":   currency,
		"categories": s.svc.Categories(r.Context(), currency, sess.CustomCategories),
		"fallback":   s.svc.Resolver().Fallback(),
	})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req struct {
		Currency string `json:"currency"`
		Name     string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	currency, ok := s.currencyFor(w, r, req.Currency, sess.Currency)
	if !ok {
		return
	}

	customs, err := s.svc.AddCategory(r.Context(), currency, sess.CustomCategories, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.sessions.Update(sess.ID, func(sess *session.Session) {
		sess.CustomCategories = customs
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"currency":   currency,
		"categories": s.svc.Categories(r.Context(), currency, customs),
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	name := r.PathValue("name")
	currency, ok := s.currencyFor(w, r, r.URL.Query().Get("currency"), sess.Currency)
	if !ok {
		return
	}

	customs, rewritten, err := s.svc.DeleteCategory(r.Context(), currency, sess.CustomCategories, name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.sessions.Update(sess.ID, func(sess *session.Session) {
		sess.CustomCategories = customs
	})

	if rewritten > 0 {
		s.recordMutation(currency)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":  currency,
		"rewritten": rewritten,
		"fallback":  s.svc.Resolver().Fallback(),
	})
}
