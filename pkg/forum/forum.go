// Package forum defines the forum post and comment candidates returned by
// semantic search, along with the error kinds shared by the search pipeline.
package forum

import "time"

// Kind selects which forum entity a search runs against.
type Kind string

const (
	// KindPost searches posts by title embedding.
	KindPost Kind = "posts"

	// KindComment searches comments by content embedding.
	KindComment Kind = "comments"
)

// ParseKind converts a user supplied string ("posts", "post", "comments",
// "comment") into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "posts", "post":
		return KindPost, true
	case "comments", "comment":
		return KindComment, true
	default:
		return "", false
	}
}

// Post is a forum post matched by a similarity search.
type Post struct {
	// ID is the internal row identifier.
	ID int64 `json:"id"`

	// PostID is the forum's external post identifier.
	PostID string `json:"post_id"`

	Title string `json:"title"`

	// URL is the post's page URL, empty when unknown.
	URL string `json:"url,omitempty"`

	// Author is the author's display name, empty when unknown.
	Author string `json:"author,omitempty"`

	// PostedAt is nil when the publication time is unknown.
	PostedAt *time.Time `json:"posted_at,omitempty"`

	// SimilarityScore is 1 - cosine distance between the query and the
	// stored title embedding.
	SimilarityScore float64 `json:"similarity_score"`
}

// Comment is a forum comment matched by a similarity search.
type Comment struct {
	// ID is the internal row identifier.
	ID int64 `json:"id"`

	CommentID string `json:"comment_id"`

	// PostID identifies the post the comment belongs to.
	PostID string `json:"post_id"`

	// Content is the comment's markdown body, empty when unknown.
	Content string `json:"content,omitempty"`

	Author   string     `json:"author,omitempty"`
	PostedAt *time.Time `json:"posted_at,omitempty"`

	SimilarityScore float64 `json:"similarity_score"`
}
