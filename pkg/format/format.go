// Package format renders search results as the plain text returned to tool
// callers.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/utils"
)

const (
	// DefaultSource is the forum name used in rendered text.
	DefaultSource = "EA Forum"

	// MaxContentLength is the number of characters of comment content shown
	// before it is cut off.
	MaxContentLength = 200

	separator  = "\n---\n\n"
	dateLayout = "1/2/2006"
)

// Formatter renders results for a named forum.
type Formatter struct {
	// Source names the forum, e.g. "EA Forum". Empty means DefaultSource.
	Source string
}

// New returns a Formatter for source.
func New(source string) Formatter {
	return Formatter{Source: source}
}

func (f Formatter) source() string {
	if f.Source == "" {
		return DefaultSource
	}
	return f.Source
}

// Posts renders post results for query.
func (f Formatter) Posts(query string, threshold float64, posts []forum.Post) string {
	if len(posts) == 0 {
		return f.none(forum.KindPost, query, threshold)
	}

	blocks := make([]string, 0, len(posts))
	for _, p := range posts {
		blocks = append(blocks, fmt.Sprintf("**%s** (Score: %s)\nAuthor: %s\nURL: %s\nPosted: %s\n",
			p.Title,
			Number(p.SimilarityScore),
			orDefault(p.Author, "Unknown"),
			orDefault(p.URL, "N/A"),
			Date(p.PostedAt),
		))
	}

	return f.found(forum.KindPost, query, len(posts)) + strings.Join(blocks, separator)
}

// Comments renders comment results for query.
func (f Formatter) Comments(query string, threshold float64, comments []forum.Comment) string {
	if len(comments) == 0 {
		return f.none(forum.KindComment, query, threshold)
	}

	blocks := make([]string, 0, len(comments))
	for _, c := range comments {
		content := "N/A"
		if c.Content != "" {
			content = utils.Truncate(c.Content, MaxContentLength)
		}

		blocks = append(blocks, fmt.Sprintf("**Comment by %s** (Score: %s)\nPost ID: %s\nPosted: %s\nContent: %s\n",
			orDefault(c.Author, "Unknown"),
			Number(c.SimilarityScore),
			c.PostID,
			Date(c.PostedAt),
			content,
		))
	}

	return f.found(forum.KindComment, query, len(comments)) + strings.Join(blocks, separator)
}

// Error renders a failed search of kind.
func (f Formatter) Error(kind forum.Kind, err error) string {
	return fmt.Sprintf("Error searching %s %s: %s", f.source(), kind, err.Error())
}

func (f Formatter) found(kind forum.Kind, query string, n int) string {
	return fmt.Sprintf("Found %d %s %s matching \"%s\":\n\n", n, f.source(), kind, query)
}

func (f Formatter) none(kind forum.Kind, query string, threshold float64) string {
	return fmt.Sprintf("No %s %s found matching \"%s\" with similarity >= %s", f.source(), kind, query, Number(threshold))
}

// Number prints x in its shortest decimal form, e.g. 0.7, 1 or 0.812345.
func Number(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Date prints t as M/D/YYYY in UTC, or "Unknown" when t is nil.
func Date(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.UTC().Format(dateLayout)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
