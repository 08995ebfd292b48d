// Package sqlite provides a SQLite similarity driver using the sqlite-vec
// extension. It is meant for local development and tests where a pgvector
// database is not available.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	page_url TEXT,
	author_display_name TEXT,
	posted_at TEXT,
	embedding BLOB
);
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	comment_id TEXT NOT NULL UNIQUE,
	post_id TEXT NOT NULL,
	markdown_content TEXT,
	author_display_name TEXT,
	posted_at TEXT,
	embedding BLOB
);`

const postsQuery = `
SELECT id, post_id, title, page_url, author_display_name, posted_at, similarity_score
FROM (
	SELECT id, post_id, title, page_url, author_display_name, posted_at,
		1 - vec_distance_cosine(embedding, ?) AS similarity_score
	FROM posts
	WHERE embedding IS NOT NULL
)
WHERE similarity_score >= ?
ORDER BY similarity_score DESC
LIMIT ?`

const commentsQuery = `
SELECT id, comment_id, post_id, markdown_content, author_display_name, posted_at, similarity_score
FROM (
	SELECT id, comment_id, post_id, markdown_content, author_display_name, posted_at,
		1 - vec_distance_cosine(embedding, ?) AS similarity_score
	FROM comments
	WHERE embedding IS NOT NULL
)
WHERE similarity_score >= ?
ORDER BY similarity_score DESC
LIMIT ?`

// Driver implements storage.Driver on SQLite with sqlite-vec.
type Driver struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDriver opens (or creates) the database at dbPath and ensures the posts
// and comments tables exist. Use ":memory:" for an in-memory database.
func NewDriver(dbPath string, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if dbPath == "" {
		return nil, storage.ConfigError("sqlite database path is not set")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", forum.ErrStorage, err)
	}

	// A :memory: database is private to its connection.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", forum.ErrStorage, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating tables: %v", forum.ErrStorage, err)
	}

	logger.Info("sqlite-vec similarity driver initialized",
		"db_path", dbPath,
		"vec_version", vecVersion,
	)

	return &Driver{db: db, logger: logger}, nil
}

// SimilarPosts ranks posts by title embedding similarity.
func (d *Driver) SimilarPosts(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Post, error) {
	rows, err := d.db.QueryContext(ctx, postsQuery, serializeFloat32(embedding), threshold, limit)
	if err != nil {
		return nil, storage.QueryError("querying posts", err)
	}
	defer rows.Close()

	posts := []forum.Post{}
	for rows.Next() {
		var (
			p                     forum.Post
			url, author, postedAt sql.NullString
			score                 sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.PostID, &p.Title, &url, &author, &postedAt, &score); err != nil {
			return nil, storage.QueryError("scanning post", err)
		}
		p.URL = url.String
		p.Author = author.String
		p.PostedAt = parseTime(postedAt)
		p.SimilarityScore = scoreOrNaN(score)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.QueryError("iterating posts", err)
	}

	return posts, nil
}

// SimilarComments ranks comments by content embedding similarity.
func (d *Driver) SimilarComments(ctx context.Context, embedding []float32, limit int, threshold float64) ([]forum.Comment, error) {
	rows, err := d.db.QueryContext(ctx, commentsQuery, serializeFloat32(embedding), threshold, limit)
	if err != nil {
		return nil, storage.QueryError("querying comments", err)
	}
	defer rows.Close()

	comments := []forum.Comment{}
	for rows.Next() {
		var (
			c                         forum.Comment
			content, author, postedAt sql.NullString
			score                     sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.CommentID, &c.PostID, &content, &author, &postedAt, &score); err != nil {
			return nil, storage.QueryError("scanning comment", err)
		}
		c.Content = content.String
		c.Author = author.String
		c.PostedAt = parseTime(postedAt)
		c.SimilarityScore = scoreOrNaN(score)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.QueryError("iterating comments", err)
	}

	return comments, nil
}

// PutPost inserts or replaces a post and its title embedding. A nil
// embedding stores the post without one.
func (d *Driver) PutPost(ctx context.Context, p forum.Post, embedding []float32) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO posts (post_id, title, page_url, author_display_name, posted_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			title = excluded.title,
			page_url = excluded.page_url,
			author_display_name = excluded.author_display_name,
			posted_at = excluded.posted_at,
			embedding = excluded.embedding`,
		p.PostID, p.Title, nullString(p.URL), nullString(p.Author), formatTime(p.PostedAt), blobOrNil(embedding),
	)
	if err != nil {
		return storage.QueryError("inserting post "+p.PostID, err)
	}
	return nil
}

// PutComment inserts or replaces a comment and its content embedding.
func (d *Driver) PutComment(ctx context.Context, c forum.Comment, embedding []float32) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO comments (comment_id, post_id, markdown_content, author_display_name, posted_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(comment_id) DO UPDATE SET
			post_id = excluded.post_id,
			markdown_content = excluded.markdown_content,
			author_display_name = excluded.author_display_name,
			posted_at = excluded.posted_at,
			embedding = excluded.embedding`,
		c.CommentID, c.PostID, nullString(c.Content), nullString(c.Author), formatTime(c.PostedAt), blobOrNil(embedding),
	)
	if err != nil {
		return storage.QueryError("inserting comment "+c.CommentID, err)
	}
	return nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobOrNil(v []float32) any {
	if v == nil {
		return nil
	}
	return serializeFloat32(v)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s.String); err == nil {
			return &t
		}
	}
	return nil
}

func scoreOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

var _ storage.Driver = (*Driver)(nil)
