// Package session holds per-session state: active currency, custom
// categories not yet persisted through a saved row, and the cached rate
// snapshot. A session is created at first contact and discarded after a
// period of inactivity; nothing in it survives beyond that.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

// Session is the explicit context every core operation receives instead
// of ambient global state.
type Session struct {
	ID               string
	Currency         string
	CustomCategories []string
	Rates            core.Snapshot
	lastSeen         time.Time
}

// snapshot deep-copies the session so callers can read it without the
// manager's lock. Caller must hold the lock.
func (s *Session) snapshot() Session {
	out := *s
	out.CustomCategories = slices.Clone(s.CustomCategories)
	out.Rates = core.Snapshot{Base: s.Rates.Base, Rates: maps.Clone(s.Rates.Rates)}
	return out
}

// Manager owns all live sessions, keyed by an opaque cookie value.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	defaultCurrency string
	initialRates    core.Snapshot
	ttl             time.Duration

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewManager creates a session manager. New sessions start on the
// default currency with the given initial rate snapshot; refreshing
// rates is a distinct user action, not tied to every request.
func NewManager(defaultCurrency string, initialRates core.Snapshot, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &Manager{
		sessions:        make(map[string]*Session),
		defaultCurrency: defaultCurrency,
		initialRates:    initialRates,
		ttl:             ttl,
		stopCleanup:     make(chan struct{}),
	}
	go m.startCleanup()
	return m
}

// Get returns a copy of the session for the given ID, creating a fresh
// one when the ID is unknown or expired. The returned bool reports
// whether the session already existed. Copies keep readers off the
// manager's lock; concurrent requests sharing a cookie otherwise race
// with Update on the Rates map.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = time.Now()
		return s.snapshot(), true
	}
	s := &Session{
		ID:       newSessionID(),
		Currency: m.defaultCurrency,
		// Own copy; an Update must never reach the shared initial map.
		Rates:    core.Snapshot{Base: m.initialRates.Base, Rates: maps.Clone(m.initialRates.Rates)},
		lastSeen: time.Now(),
	}
	m.sessions[s.ID] = s
	return s.snapshot(), false
}

// Update applies fn to the session under the manager's lock.
func (m *Manager) Update(id string, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		fn(s)
		s.lastSeen = time.Now()
	}
}

// ActiveSessions returns the number of live sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stop shuts down the cleanup goroutine.
func (m *Manager) Stop() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
