package http

import (
	"net/http"
	"slices"

	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/session"
)

type snapshotDTO struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func toSnapshotDTO(snap core.Snapshot) snapshotDTO {
	return snapshotDTO{Base: snap.Base, Rates: snap.Rates}
}

func sessionPayload(sess session.Session, currencies []string) map[string]any {
	customs := sess.CustomCategories
	if customs == nil {
		customs = []string{}
	}
	return map[string]any{
		"currency":          sess.Currency,
		"currencies":        currencies,
		"custom_categories": customs,
		"rates":             toSnapshotDTO(sess.Rates),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	writeJSON(w, http.StatusOK, sessionPayload(sess, s.svc.Currencies()))
}

func (s *Server) handleSelectCurrency(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req struct {
		Currency string `json:"currency"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !slices.Contains(s.svc.Currencies(), req.Currency) {
		writeError(w, http.StatusBadRequest, "unknown currency: "+req.Currency)
		return
	}

	s.sessions.Update(sess.ID, func(sess *session.Session) {
		sess.Currency = req.Currency
	})
	sess.Currency = req.Currency // local copy, for the response only
	writeJSON(w, http.StatusOK, sessionPayload(sess, s.svc.Currencies()))
}

// handleRefreshRates fetches a fresh snapshot for this session. The
// fetch never fails; at worst the session ends up on the fallback rates.
func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	snap := s.rates.Fetch(r.Context())
	s.sessions.Update(sess.ID, func(sess *session.Session) {
		sess.Rates = snap
	})

	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

func (s *Server) handleAssetsOverview(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	ov, err := s.svc.AssetsOverview(r.Context(), sess.Rates)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	totals := make([]map[string]any, 0, len(ov.Totals))
	for _, t := range ov.Totals {
		totals = append(totals, map[string]any{
			"currency":    t.Currency,
			"net_balance": t.NetBalance,
			"total":       t.Total,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base":       ov.Base,
		"total_base": ov.TotalBase,
		"totals":     totals,
	})
}
