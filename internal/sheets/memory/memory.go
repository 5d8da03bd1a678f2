package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jaymin91-1/MyAsset/internal/core"

	ports "github.com/jaymin91-1/MyAsset/internal/sheets"
)

// Store is an in-memory ledger store with the same contract as the
// Google Sheets adapter: loads never fail, saves overwrite the whole
// currency partition. Used by tests and the memory backend.
type Store struct {
	mu      sync.Mutex
	ledgers map[string]core.Ledger

	// failSaves makes every Save return an error, for exercising the
	// save-failure path in tests.
	failSaves bool
}

var (
	_ ports.LedgerStore = (*Store)(nil)

	errSaveFailed = errors.New("save failed")
)

func New() *Store {
	return &Store{ledgers: make(map[string]core.Ledger)}
}

// Load returns a copy of the stored ledger, or an empty shaped ledger
// for currencies never saved.
func (s *Store) Load(_ context.Context, currency string) core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[currency]
	if !ok {
		return core.Ledger{Currency: currency}
	}
	return l.Clone()
}

// Save replaces the currency's ledger with a copy of the given one.
func (s *Store) Save(_ context.Context, l core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves {
		return errSaveFailed
	}
	s.ledgers[l.Currency] = l.Clone()
	return nil
}

// FailSaves toggles save failures.
func (s *Store) FailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}
