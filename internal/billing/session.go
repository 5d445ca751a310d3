package billing

import (
	"errors"
	"sync"

	"littlelens/backend/internal/xid"
)

var ErrSessionNotFound = errors.New("billing session not found")

// Manager owns the active billing sessions. Each bill belongs to exactly one
// session (one terminal); mutations are serialized under the manager lock,
// which is sufficient for the single-user pace of a studio counter.
type Manager struct {
	mu    sync.Mutex
	bills map[string]*Bill
}

func NewManager() *Manager {
	return &Manager{bills: make(map[string]*Bill)}
}

// Create opens a new empty billing session and returns its id.
func (m *Manager) Create() string {
	id := xid.New("bill")
	m.mu.Lock()
	m.bills[id] = &Bill{}
	m.mu.Unlock()
	return id
}

// With runs fn against the session's bill while holding the manager lock.
func (m *Manager) With(sessionID string, fn func(*Bill) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bill, ok := m.bills[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(bill)
}

// Drop discards a session entirely, e.g. after its bill has been committed.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	delete(m.bills, sessionID)
	m.mu.Unlock()
}
