// Package storage defines the read-only similarity lookup over stored forum
// embeddings. Backends live in sub-packages.
package storage

import (
	"context"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

// Driver runs similarity lookups against precomputed forum embeddings.
//
// Implementations return raw scores computed as 1 - cosine distance, keep only
// rows whose embedding is present and whose score is >= threshold, order rows
// by descending score and return at most limit rows.
type Driver interface {
	// SimilarPosts ranks posts by title embedding similarity.
	SimilarPosts(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error)

	// SimilarComments ranks comments by content embedding similarity.
	SimilarComments(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error)

	// Close releases any resources held by the driver.
	Close() error
}

// Tables names the relations and embedding columns a SQL driver reads.
type Tables struct {
	Posts                   string
	PostsEmbeddingColumn    string
	Comments                string
	CommentsEmbeddingColumn string
}

// DefaultTables returns the table layout populated by the forum ingestion
// pipeline.
func DefaultTables() Tables {
	return Tables{
		Posts:                   "fellowship_mvp",
		PostsEmbeddingColumn:    "title_embedding_gemini",
		Comments:                "fellowship_mvp_comments",
		CommentsEmbeddingColumn: "content_embedding",
	}
}

// WithDefaults fills empty fields from DefaultTables.
func (t Tables) WithDefaults() Tables {
	d := DefaultTables()
	if t.Posts == "" {
		t.Posts = d.Posts
	}
	if t.PostsEmbeddingColumn == "" {
		t.PostsEmbeddingColumn = d.PostsEmbeddingColumn
	}
	if t.Comments == "" {
		t.Comments = d.Comments
	}
	if t.CommentsEmbeddingColumn == "" {
		t.CommentsEmbeddingColumn = d.CommentsEmbeddingColumn
	}
	return t
}
