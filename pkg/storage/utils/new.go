// Package storageutils builds similarity drivers from configuration.
package storageutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
	"github.com/papercomputeco/forumsearch/pkg/storage"
	"github.com/papercomputeco/forumsearch/pkg/storage/inmemory"
	"github.com/papercomputeco/forumsearch/pkg/storage/postgres"
	"github.com/papercomputeco/forumsearch/pkg/storage/qdrant"
	"github.com/papercomputeco/forumsearch/pkg/storage/sqlite"
	"github.com/papercomputeco/forumsearch/pkg/utils"
)

type NewDriverOpts struct {
	// ProviderType is one of "postgres", "sqlite", "qdrant" or "inmemory".
	ProviderType string

	// Target is the connection string, database path or qdrant address.
	Target string

	// APIKey authenticates against qdrant.
	APIKey string

	// Tables overrides the postgres relations and embedding columns.
	Tables storage.Tables

	// PostsCollection and CommentsCollection override the qdrant collections.
	PostsCollection    string
	CommentsCollection string

	Logger *slog.Logger
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}

	switch o.ProviderType {
	case "postgres", "postgresql":
		return postgres.NewDriver(ctx, postgres.Config{
			ConnString: o.Target,
			Tables:     o.Tables,
		}, o.Logger)
	case "sqlite":
		return sqlite.NewDriver(o.Target, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			Addr:               o.Target,
			APIKey:             o.APIKey,
			PostsCollection:    o.PostsCollection,
			CommentsCollection: o.CommentsCollection,
		}, o.Logger)
	case "inmemory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported storage provider: %q", forum.ErrConfiguration, o.ProviderType)
	}
}

// LazyDriver connects on the first lookup and reuses the connection for
// every later lookup. A failed connection attempt is retried on the next
// lookup.
type LazyDriver struct {
	lazy *utils.Lazy[storage.Driver]
}

// NewLazyDriver returns a Driver that defers NewDriver(ctx, o) until first
// use.
func NewLazyDriver(o *NewDriverOpts) *LazyDriver {
	return &LazyDriver{
		lazy: utils.NewLazy(func(ctx context.Context) (storage.Driver, error) {
			return NewDriver(ctx, o)
		}),
	}
}

// Connect establishes the connection if it does not exist yet.
func (l *LazyDriver) Connect(ctx context.Context) error {
	_, err := l.lazy.Get(ctx)
	return err
}

func (l *LazyDriver) SimilarPosts(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error) {
	d, err := l.lazy.Get(ctx)
	if err != nil {
		return nil, err
	}
	return d.SimilarPosts(ctx, embedding, limit, threshold)
}

func (l *LazyDriver) SimilarComments(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error) {
	d, err := l.lazy.Get(ctx)
	if err != nil {
		return nil, err
	}
	return d.SimilarComments(ctx, embedding, limit, threshold)
}

// Close closes the underlying driver if it was ever connected.
func (l *LazyDriver) Close() error {
	if d, ok := l.lazy.Peek(); ok {
		return d.Close()
	}
	return nil
}

var _ storage.Driver = (*LazyDriver)(nil)
