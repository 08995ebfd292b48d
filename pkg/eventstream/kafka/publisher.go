// Package kafka publishes search events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/forumsearch/pkg/eventstream"
)

const defaultWriteTimeout = 5 * time.Second

// Config configures the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 5s.
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes each event as one JSON message keyed by search kind.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
}

// NewPublisher creates a synchronous Kafka writer for the topic.
func NewPublisher(c Config, logger *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: timeout,
	}

	logger.Info("kafka event publisher initialized",
		"brokers", c.Brokers,
		"topic", c.Topic,
	)

	return &Publisher{writer: w, timeout: timeout, logger: logger}, nil
}

// PublishSearch writes the event to the topic.
func (p *Publisher) PublishSearch(ctx context.Context, event *eventstream.SearchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSearchEvent
	}

	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing search event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published search event",
		"event_id", event.EventID,
		"kind", event.Search.Kind,
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(event *eventstream.SearchCompletedEvent) (kafkago.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshaling search event: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(event.Search.Kind),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}, nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
