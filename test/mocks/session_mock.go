package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

// MockSessionStore implements ports.SessionStore in memory.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]mockSession

	// Error injection
	CreateError error
	ExistsError error
	RevokeError error
}

type mockSession struct {
	userID    string
	expiresAt time.Time
}

var _ ports.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]mockSession)}
}

func (m *MockSessionStore) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.sessions[sessionID] = mockSession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MockSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	s, ok := m.sessions[sessionID]
	return ok && time.Now().Before(s.expiresAt), nil
}

func (m *MockSessionStore) Revoke(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeError != nil {
		return m.RevokeError
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *MockSessionStore) RevokeUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeError != nil {
		return m.RevokeError
	}
	for id, s := range m.sessions {
		if s.userID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Count returns the number of stored sessions.
func (m *MockSessionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
