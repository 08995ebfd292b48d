// Package eventstreamutils builds search event publishers from configuration.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/forumsearch/pkg/eventstream"
	"github.com/papercomputeco/forumsearch/pkg/eventstream/kafka"
	"github.com/papercomputeco/forumsearch/pkg/eventstream/nop"
	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
)

type NewPublisherOpts struct {
	// ProviderType is "none" (or empty) or "kafka".
	ProviderType string

	Brokers []string
	Topic   string

	Logger *slog.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}

	switch o.ProviderType {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", forum.ErrConfiguration, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unsupported events provider: %q", forum.ErrConfiguration, o.ProviderType)
	}
}
