// Package search runs semantic similarity searches over forum posts and
// comments. It is shared by the MCP tools, the REST endpoints and the CLI.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/forumsearch/pkg/embeddings"
	"github.com/papercomputeco/forumsearch/pkg/eventstream"
	"github.com/papercomputeco/forumsearch/pkg/eventstream/nop"
	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/storage"
)

const serviceName = "forumsearch"

// Config holds the dependencies of an Engine.
type Config struct {
	Embedder embeddings.Embedder
	Driver   storage.Driver

	// Publisher receives a search event after every search. Defaults to a
	// no-op publisher.
	Publisher eventstream.Publisher

	Logger *slog.Logger

	// Forum names the searched forum in published events.
	Forum string
}

// Engine embeds a query, runs the similarity lookup and shapes the results.
type Engine struct {
	embedder  embeddings.Embedder
	driver    storage.Driver
	publisher eventstream.Publisher
	logger    *slog.Logger
	forum     string
}

// New creates an Engine.
func New(c Config) (*Engine, error) {
	if c.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}

	return &Engine{
		embedder:  c.Embedder,
		driver:    c.Driver,
		publisher: c.Publisher,
		logger:    c.Logger,
		forum:     c.Forum,
	}, nil
}

// SearchPosts returns posts whose title is similar to the query.
func (e *Engine) SearchPosts(ctx context.Context, req Request) ([]forum.Post, error) {
	started := time.Now()

	posts, err := run(ctx, e, forum.KindPost, req, e.driver.SimilarPosts)
	if err == nil {
		posts = shape(posts, req, func(p *forum.Post) *float64 { return &p.SimilarityScore })
	}

	var top float64
	if len(posts) > 0 {
		top = posts[0].SimilarityScore
	}
	e.publish(ctx, forum.KindPost, req, started, len(posts), top, err)

	if err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchComments returns comments whose content is similar to the query.
func (e *Engine) SearchComments(ctx context.Context, req Request) ([]forum.Comment, error) {
	started := time.Now()

	comments, err := run(ctx, e, forum.KindComment, req, e.driver.SimilarComments)
	if err == nil {
		comments = shape(comments, req, func(c *forum.Comment) *float64 { return &c.SimilarityScore })
	}

	var top float64
	if len(comments) > 0 {
		top = comments[0].SimilarityScore
	}
	e.publish(ctx, forum.KindComment, req, started, len(comments), top, err)

	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Connector is implemented by backends that set up their connection on
// first use. Connect must be safe to call before every search.
type Connector interface {
	Connect(ctx context.Context) error
}

// connect prepares the storage driver and then the embedder, so a missing
// database never costs an embedding request.
func (e *Engine) connect(ctx context.Context) error {
	if c, ok := e.driver.(Connector); ok {
		if err := c.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}
	if c, ok := e.embedder.(Connector); ok {
		if err := c.Connect(ctx); err != nil {
			return fmt.Errorf("failed to initialize embedder: %w", err)
		}
	}
	return nil
}

type lookupFunc[T any] func(ctx context.Context, embedding []float32, limit int, threshold float64) ([]T, error)

// run validates the request, connects the backends, embeds the query and
// performs the lookup.
func run[T any](ctx context.Context, e *Engine, kind forum.Kind, req Request, lookup lookupFunc[T]) ([]T, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e.logger.Debug("search request",
		"kind", kind,
		"query", req.Query,
		"limit", req.Limit,
		"threshold", req.Threshold,
	)

	if req.Limit == 0 {
		return []T{}, nil
	}

	if err := e.connect(ctx); err != nil {
		return nil, err
	}

	embedding, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := lookup(ctx, embedding, req.Limit, req.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}

	return rows, nil
}

func (e *Engine) publish(ctx context.Context, kind forum.Kind, req Request, started time.Time, count int, top float64, searchErr error) {
	outcome := eventstream.SearchResult{
		StartedAt:   started.UTC(),
		CompletedAt: time.Now().UTC(),
		ResultCount: count,
		TopScore:    top,
	}
	if searchErr != nil {
		outcome.Error = searchErr.Error()
	}

	event := eventstream.NewSearchCompletedEvent(
		eventstream.EventSource{Service: serviceName, Forum: e.forum},
		eventstream.SearchMeta{
			Kind:      string(kind),
			Query:     req.Query,
			Limit:     req.Limit,
			Threshold: req.Threshold,
		},
		outcome,
	)

	if err := e.publisher.PublishSearch(ctx, event); err != nil {
		e.logger.Warn("failed to publish search event",
			"event_id", event.EventID,
			"kind", kind,
			"error", err,
		)
	}

	logAttrs := []any{
		"kind", kind,
		"query", req.Query,
		"results", count,
		"duration_ms", outcome.CompletedAt.Sub(outcome.StartedAt).Milliseconds(),
	}
	if searchErr != nil {
		e.logger.Warn("search failed", append(logAttrs, "error", searchErr)...)
		return
	}
	e.logger.Info("search completed", logAttrs...)
}
