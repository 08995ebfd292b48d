package utils

import (
	"context"
	"sync"
)

// Lazy holds a value that is constructed on first use and reused afterwards.
// A failed construction is not remembered, so the next Get tries again.
type Lazy[T any] struct {
	mu    sync.Mutex
	build func(ctx context.Context) (T, error)
	value T
	ready bool
}

// NewLazy returns a Lazy that calls build the first time Get is called.
func NewLazy[T any](build func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get returns the value, building it if it does not exist yet.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}

	v, err := l.build(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	l.value = v
	l.ready = true
	return v, nil
}

// Peek returns the value and true if it has already been built.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ready
}
