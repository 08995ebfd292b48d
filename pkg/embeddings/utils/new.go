// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/forumsearch/pkg/embeddings"
	"github.com/papercomputeco/forumsearch/pkg/embeddings/ollama"
	"github.com/papercomputeco/forumsearch/pkg/embeddings/openai"
	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/utils"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Dimensions   uint
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:     o.APIKey,
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", forum.ErrConfiguration, o.ProviderType)
	}
}

// LazyEmbedder builds its provider on the first Embed call and reuses it for
// every later call. Construction errors surface from Embed and are retried on
// the next call.
type LazyEmbedder struct {
	lazy   *utils.Lazy[embeddings.Embedder]
	logger *slog.Logger
}

// NewLazyEmbedder returns an Embedder that defers NewEmbedder(o) until first
// use.
func NewLazyEmbedder(o *NewEmbedderOpts, logger *slog.Logger) *LazyEmbedder {
	return &LazyEmbedder{
		lazy: utils.NewLazy(func(context.Context) (embeddings.Embedder, error) {
			e, err := NewEmbedder(o)
			if err != nil {
				return nil, err
			}
			logger.Info("embedding client initialized",
				"provider", o.ProviderType,
				"model", o.Model,
			)
			return e, nil
		}),
		logger: logger,
	}
}

// Connect builds the provider if it does not exist yet.
func (l *LazyEmbedder) Connect(ctx context.Context) error {
	_, err := l.lazy.Get(ctx)
	return err
}

// Embed converts text into a vector embedding using the lazily built provider.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e, err := l.lazy.Get(ctx)
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, text)
}

// Close closes the underlying provider if it was ever built.
func (l *LazyEmbedder) Close() error {
	if e, ok := l.lazy.Peek(); ok {
		return e.Close()
	}
	return nil
}

var _ embeddings.Embedder = (*LazyEmbedder)(nil)
