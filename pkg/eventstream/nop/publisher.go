package nop

import (
	"context"

	"github.com/papercomputeco/forumsearch/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishSearch validates input and otherwise does nothing.
func (p *Publisher) PublishSearch(_ context.Context, event *eventstream.SearchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSearchEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
