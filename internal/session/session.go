// Package session keeps track of which user is logged in to the running
// process. Nothing is persisted; a restart always starts logged out.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/chirp/internal/models"
	"github.com/dmitrijs2005/chirp/internal/timex"
)

// Session is a snapshot of the active login.
type Session struct {
	ID        string
	Identity  models.Identity
	StartedAt time.Time
}

// Manager holds at most one active session. Login does not check
// credentials; callers authenticate first.
type Manager struct {
	mu      sync.RWMutex
	clock   timex.Clock
	current *Session
}

func NewManager(clock timex.Clock) *Manager {
	return &Manager{clock: clock}
}

// Login replaces any active session with a new one for id.
func (m *Manager) Login(id models.Identity) Session {
	s := &Session{
		ID:        uuid.NewString(),
		Identity:  id,
		StartedAt: m.clock.Now(),
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	return *s
}

func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Current returns the logged in identity, if any.
func (m *Manager) Current() (models.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.Identity{}, false
	}
	return m.current.Identity, true
}

// Snapshot returns the whole active session, if any.
func (m *Manager) Snapshot() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

func (m *Manager) IsLoggedIn() bool {
	_, ok := m.Current()
	return ok
}

// SessionID is "" when nobody is logged in.
func (m *Manager) SessionID() string {
	s, _ := m.Snapshot()
	return s.ID
}

// UpdateDisplayName changes the cached name only. The caller keeps the
// users table in sync. No-op when logged out.
func (m *Manager) UpdateDisplayName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Identity.DisplayName = name
	}
}
