package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/storage"
)

type postRecord struct {
	post      forum.Post
	embedding []float32
}

type commentRecord struct {
	comment   forum.Comment
	embedding []float32
}

// Driver implements storage.Driver by scanning in-memory records and
// computing cosine similarity for each one.
type Driver struct {
	// mu is a read write sync mutex guarding the record slices
	mu sync.RWMutex

	// posts and comments are kept in insertion order, which is the
	// order used to break similarity ties
	posts    []postRecord
	comments []commentRecord
	nextID   int64
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

// AddPost stores a post with its title embedding. The post's ID is assigned
// when zero. A nil embedding stores the post without one.
func (d *Driver) AddPost(p forum.Post, embedding []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p.ID == 0 {
		d.nextID++
		p.ID = d.nextID
	}
	d.posts = append(d.posts, postRecord{post: p, embedding: embedding})
}

// AddComment stores a comment with its content embedding.
func (d *Driver) AddComment(c forum.Comment, embedding []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c.ID == 0 {
		d.nextID++
		c.ID = d.nextID
	}
	d.comments = append(d.comments, commentRecord{comment: c, embedding: embedding})
}

// SimilarPosts returns posts whose title embedding similarity is at least
// threshold, most similar first.
func (d *Driver) SimilarPosts(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.QueryError("querying posts", err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	posts := []forum.Post{}
	for _, r := range d.posts {
		if r.embedding == nil {
			continue
		}
		score, err := cosineSimilarity(embedding, r.embedding)
		if err != nil {
			return nil, storage.QueryError("scoring post "+r.post.PostID, err)
		}
		if math.IsNaN(score) || score < threshold {
			continue
		}
		p := r.post
		p.SimilarityScore = score
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].SimilarityScore > posts[j].SimilarityScore
	})

	return head(posts, limit), nil
}

// SimilarComments returns comments whose content embedding similarity is at
// least threshold, most similar first.
func (d *Driver) SimilarComments(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.QueryError("querying comments", err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	comments := []forum.Comment{}
	for _, r := range d.comments {
		if r.embedding == nil {
			continue
		}
		score, err := cosineSimilarity(embedding, r.embedding)
		if err != nil {
			return nil, storage.QueryError("scoring comment "+r.comment.CommentID, err)
		}
		if math.IsNaN(score) || score < threshold {
			continue
		}
		c := r.comment
		c.SimilarityScore = score
		comments = append(comments, c)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].SimilarityScore > comments[j].SimilarityScore
	})

	return head(comments, limit), nil
}

// Count returns the number of stored posts and comments.
func (d *Driver) Count() (posts, comments int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.posts), len(d.comments)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func head[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// cosineSimilarity is 1 - cosine distance. A zero vector has an undefined
// similarity and yields NaN, which callers drop.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, dimensionError{want: len(b), got: len(a)}
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return math.NaN(), nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

var _ storage.Driver = (*Driver)(nil)
