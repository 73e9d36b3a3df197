// ABOUTME: In-memory Store implementation for tests and ephemeral sessions
// ABOUTME: Mirrors the SQLite store semantics without touching disk

package session

import "sync"

// MemoryStore implements Store without persistence. Used by tests and by
// --no-persist runs where the operator does not want a token on disk.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	cp.Grants = append([]Grant(nil), s.Grants...)
	m.sess = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func (m *MemoryStore) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return Session{}, ErrNoSession
	}
	return *m.sess, nil
}

func (m *MemoryStore) Token() string {
	sess, err := m.Current()
	if err != nil {
		return ""
	}
	return sess.Token
}

func (m *MemoryStore) DisplayName() string {
	sess, err := m.Current()
	if err != nil {
		return ""
	}
	return sess.DisplayName
}

func (m *MemoryStore) Grants() []Grant {
	sess, err := m.Current()
	if err != nil {
		return nil
	}
	return sess.Grants
}

func (m *MemoryStore) Active() bool {
	return m.Token() != ""
}

func (m *MemoryStore) Close() error {
	return nil
}
