// Package embeddings defines the text embedding client used to turn search
// queries into vectors.
package embeddings

import "context"

// Embedder provides text embedding capabilities.
//
// The model behind an Embedder must be the same one that produced the stored
// forum embeddings; nothing here can verify that.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
