package storage

import (
	"context"
	"sync"

	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/state"
)

// MockStorage is an in-memory Storage for testing.
type MockStorage struct {
	mu       sync.RWMutex
	sessions map[string]*state.Session

	PingError error
	SaveError error
	LoadError error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*state.Session),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s *state.Session) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = copySession(s)
	return nil
}

// copySession clones deeply enough that callers can keep mutating
// their session without aliasing the stored one.
func copySession(s *state.Session) *state.Session {
	c := *s
	c.ChatHistory = append([]chat.ChatMessage(nil), s.ChatHistory...)
	if s.PendingRoll != nil {
		pr := *s.PendingRoll
		c.PendingRoll = &pr
	}
	return &c
}

func (m *MockStorage) LoadSession(ctx context.Context, id string) (*state.Session, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
