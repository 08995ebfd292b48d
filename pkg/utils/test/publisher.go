package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/forumsearch/pkg/eventstream"
)

// MockPublisher records published search events.
type MockPublisher struct {
	mu sync.Mutex

	Events []*eventstream.SearchCompletedEvent

	// Err, when set, is returned from PublishSearch after recording the event
	Err error

	Closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishSearch(_ context.Context, event *eventstream.SearchCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event == nil {
		return eventstream.ErrNilSearchEvent
	}
	m.Events = append(m.Events, event)
	return m.Err
}

// Published returns a snapshot of the recorded events.
func (m *MockPublisher) Published() []*eventstream.SearchCompletedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.SearchCompletedEvent(nil), m.Events...)
}

func (m *MockPublisher) Close() error {
	m.Closed = true
	return nil
}
