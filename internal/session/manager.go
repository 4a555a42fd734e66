package session

import (
	"sync"
)

// Manager owns the per-user session and guard maps. Get-or-create is atomic
// for concurrent first access of the same new user; operations on different
// users never contend outside the brief map lock.
type Manager struct {
	mu         sync.RWMutex
	startScene string
	sessions   map[string]*Session
	guards     map[string]*sync.Mutex
}

// NewManager creates a session manager whose fresh sessions start at the
// given scene.
func NewManager(startScene string) *Manager {
	return &Manager{
		startScene: startScene,
		sessions:   make(map[string]*Session),
		guards:     make(map[string]*sync.Mutex),
	}
}

// GetOrCreate returns the user's session, creating the default one on first
// access. Exactly one session is ever created per user.
func (m *Manager) GetOrCreate(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = &Session{SceneID: m.startScene}
	m.sessions[userID] = s
	return s
}

// Guard returns the user's exclusion guard, creating it on first access.
// The returned mutex has stable identity for the process lifetime.
func (m *Manager) Guard(userID string) *sync.Mutex {
	m.mu.RLock()
	g, ok := m.guards[userID]
	m.mu.RUnlock()
	if ok {
		return g
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.guards[userID]; ok {
		return g
	}
	g = &sync.Mutex{}
	m.guards[userID] = g
	return g
}

// Reset restores the user's session to the default state. It waits for any
// in-flight delivery run by acquiring the user's guard, and keeps the
// session's identity stable so runs already queued on the guard never see a
// stale pointer.
func (m *Manager) Reset(userID string) *Session {
	g := m.Guard(userID)
	g.Lock()
	defer g.Unlock()

	s := m.GetOrCreate(userID)
	s.MoveTo(m.startScene)
	s.Resume()
	return s
}

// Count returns the number of known sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
