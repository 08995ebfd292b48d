// Package qdrant provides a similarity driver backed by Qdrant collections
// that use cosine distance.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/storage"
)

const (
	// DefaultPort is the Qdrant gRPC port.
	DefaultPort = 6334

	DefaultPostsCollection    = "posts"
	DefaultCommentsCollection = "comments"
)

// Payload keys for stored points.
const (
	keyPostID    = "post_id"
	keyCommentID = "comment_id"
	keyTitle     = "title"
	keyURL       = "page_url"
	keyAuthor    = "author_display_name"
	keyPostedAt  = "posted_at"
	keyContent   = "markdown_content"
)

// Config holds the Qdrant connection settings.
type Config struct {
	// Addr is host[:port]. The port defaults to DefaultPort.
	Addr   string
	APIKey string
	UseTLS bool

	PostsCollection    string
	CommentsCollection string
}

// Driver implements storage.Driver on Qdrant.
type Driver struct {
	client   *qc.Client
	posts    string
	comments string
	logger   *slog.Logger
}

// NewDriver creates a Qdrant client. The gRPC connection is established
// lazily by the client, so an unreachable server surfaces on the first query.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Addr == "" {
		return nil, storage.ConfigError("qdrant address is not set")
	}

	host, port, err := splitAddr(c.Addr)
	if err != nil {
		return nil, storage.ConfigError("invalid qdrant address %q: %v", c.Addr, err)
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,

		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", forum.ErrStorage, err)
	}

	d := &Driver{
		client:   client,
		posts:    c.PostsCollection,
		comments: c.CommentsCollection,
		logger:   logger,
	}
	if d.posts == "" {
		d.posts = DefaultPostsCollection
	}
	if d.comments == "" {
		d.comments = DefaultCommentsCollection
	}

	logger.Info("qdrant similarity driver initialized",
		"host", host,
		"port", port,
		"posts_collection", d.posts,
		"comments_collection", d.comments,
	)

	return d, nil
}

// SimilarPosts queries the posts collection.
func (d *Driver) SimilarPosts(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error) {
	points, err := d.query(ctx, d.posts, embedding, limit, threshold)
	if err != nil {
		return nil, storage.QueryError("querying posts", err)
	}

	posts := make([]forum.Post, 0, len(points))
	for _, p := range points {
		posts = append(posts, pointToPost(p))
	}
	return posts, nil
}

// SimilarComments queries the comments collection.
func (d *Driver) SimilarComments(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error) {
	points, err := d.query(ctx, d.comments, embedding, limit, threshold)
	if err != nil {
		return nil, storage.QueryError("querying comments", err)
	}

	comments := make([]forum.Comment, 0, len(points))
	for _, p := range points {
		comments = append(comments, pointToComment(p))
	}
	return comments, nil
}

func (d *Driver) query(ctx context.Context, collection string, embedding []float32, limit int, threshold float64) ([]*qc.ScoredPoint, error) {
	if limit <= 0 {
		return nil, nil
	}

	return d.client.Query(ctx, &qc.QueryPoints{
		CollectionName: collection,
		Query:          qc.NewQuery(embedding...),
		Limit:          qc.PtrOf(uint64(limit)),
		ScoreThreshold: qc.PtrOf(float32(threshold)),
		WithPayload:    qc.NewWithPayload(true),
	})
}

// EnsureCollections creates the posts and comments collections with cosine
// distance when they do not exist.
func (d *Driver) EnsureCollections(ctx context.Context, dimensions uint64) error {
	for _, name := range []string{d.posts, d.comments} {
		exists, err := d.client.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: checking collection %s: %v", forum.ErrStorage, name, err)
		}
		if exists {
			continue
		}

		err = d.client.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: name,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     dimensions,
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("%w: creating collection %s: %v", forum.ErrStorage, name, err)
		}
		d.logger.Info("created qdrant collection", "collection", name, "dimensions", dimensions)
	}
	return nil
}

// PutPost upserts a post point keyed by the post's numeric ID.
func (d *Driver) PutPost(ctx context.Context, p forum.Post, embedding []float32) error {
	return d.upsert(ctx, d.posts, p.ID, embedding, postPayload(p))
}

// PutComment upserts a comment point keyed by the comment's numeric ID.
func (d *Driver) PutComment(ctx context.Context, c forum.Comment, embedding []float32) error {
	return d.upsert(ctx, d.comments, c.ID, embedding, commentPayload(c))
}

func (d *Driver) upsert(ctx context.Context, collection string, id int64, embedding []float32, payload map[string]*qc.Value) error {
	_, err := d.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: collection,
		Wait:           qc.PtrOf(true),
		Points: []*qc.PointStruct{
			{
				Id:      qc.NewIDNum(uint64(id)),
				Vectors: qc.NewVectors(embedding...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: upserting point %d into %s: %v", forum.ErrStorage, id, collection, err)
	}
	return nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// no port given
		return addr, DefaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func pointToPost(p *qc.ScoredPoint) forum.Post {
	payload := p.GetPayload()
	return forum.Post{
		ID:              int64(p.GetId().GetNum()),
		PostID:          payload[keyPostID].GetStringValue(),
		Title:           payload[keyTitle].GetStringValue(),
		URL:             payload[keyURL].GetStringValue(),
		Author:          payload[keyAuthor].GetStringValue(),
		PostedAt:        parseTime(payload[keyPostedAt]),
		SimilarityScore: float64(p.GetScore()),
	}
}

func pointToComment(p *qc.ScoredPoint) forum.Comment {
	payload := p.GetPayload()
	return forum.Comment{
		ID:              int64(p.GetId().GetNum()),
		CommentID:       payload[keyCommentID].GetStringValue(),
		PostID:          payload[keyPostID].GetStringValue(),
		Content:         payload[keyContent].GetStringValue(),
		Author:          payload[keyAuthor].GetStringValue(),
		PostedAt:        parseTime(payload[keyPostedAt]),
		SimilarityScore: float64(p.GetScore()),
	}
}

func postPayload(p forum.Post) map[string]*qc.Value {
	payload := map[string]*qc.Value{
		keyPostID: qc.NewValueString(p.PostID),
		keyTitle:  qc.NewValueString(p.Title),
	}
	putOptional(payload, keyURL, p.URL)
	putOptional(payload, keyAuthor, p.Author)
	if p.PostedAt != nil {
		payload[keyPostedAt] = qc.NewValueString(p.PostedAt.UTC().Format(time.RFC3339Nano))
	}
	return payload
}

func commentPayload(c forum.Comment) map[string]*qc.Value {
	payload := map[string]*qc.Value{
		keyCommentID: qc.NewValueString(c.CommentID),
		keyPostID:    qc.NewValueString(c.PostID),
	}
	putOptional(payload, keyContent, c.Content)
	putOptional(payload, keyAuthor, c.Author)
	if c.PostedAt != nil {
		payload[keyPostedAt] = qc.NewValueString(c.PostedAt.UTC().Format(time.RFC3339Nano))
	}
	return payload
}

func putOptional(payload map[string]*qc.Value, key, value string) {
	if value != "" {
		payload[key] = qc.NewValueString(value)
	}
}

func parseTime(v *qc.Value) *time.Time {
	s := v.GetStringValue()
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

var _ storage.Driver = (*Driver)(nil)
