package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

// MockEventPublisher implements ports.LibraryEventPublisher and records
// what the relay hands to the broker.
type MockEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents []ports.LibraryEvent

	// Error injection
	PublishError error

	PublishCallCount int
}

var _ ports.LibraryEventPublisher = (*MockEventPublisher)(nil)

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		PublishedEvents: make([]ports.LibraryEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt ports.LibraryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockEventPublisher) GetPublishedEvents() []ports.LibraryEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.LibraryEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockEventPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}

func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.LibraryEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}
