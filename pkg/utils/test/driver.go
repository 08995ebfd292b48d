package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

// DriverCall records the arguments of one similarity lookup.
type DriverCall struct {
	Embedding []float32
	Limit     int
	Threshold float64
}

// MockDriver is a test similarity driver that returns canned rows as-is,
// without filtering or ordering them.
type MockDriver struct {
	mu sync.Mutex

	Posts    []forum.Post
	Comments []forum.Comment
	Err      error

	PostCalls    []DriverCall
	CommentCalls []DriverCall

	Closed bool
}

func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

func (m *MockDriver) SimilarPosts(_ context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PostCalls = append(m.PostCalls, DriverCall{Embedding: embedding, Limit: limit, Threshold: threshold})
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]forum.Post(nil), m.Posts...), nil
}

func (m *MockDriver) SimilarComments(_ context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CommentCalls = append(m.CommentCalls, DriverCall{Embedding: embedding, Limit: limit, Threshold: threshold})
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]forum.Comment(nil), m.Comments...), nil
}

// CallCount returns the number of lookups of either kind.
func (m *MockDriver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PostCalls) + len(m.CommentCalls)
}

func (m *MockDriver) Close() error {
	m.Closed = true
	return nil
}
