package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

const (
	// DefaultLimit caps the number of results when the caller omits a limit.
	DefaultLimit = 10

	// DefaultThreshold is the minimum similarity score when the caller omits
	// a threshold.
	DefaultThreshold = 0.7
)

// Request is a single similarity search.
type Request struct {
	// Query is the natural-language text to embed.
	Query string `json:"query"`

	// Limit is the maximum number of results. Zero yields no results.
	Limit int `json:"limit"`

	// Threshold is the minimum similarity score, in [0,1].
	Threshold float64 `json:"threshold"`
}

// NewRequest builds a Request, applying DefaultLimit and DefaultThreshold
// for nil arguments.
func NewRequest(query string, limit *int, threshold *float64) Request {
	r := Request{
		Query:     query,
		Limit:     DefaultLimit,
		Threshold: DefaultThreshold,
	}
	if limit != nil {
		r.Limit = *limit
	}
	if threshold != nil {
		r.Threshold = *threshold
	}
	return r
}

// Validate reports a forum.ErrValidation error for an empty query, a
// negative limit, or a threshold outside [0,1].
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", forum.ErrValidation)
	}
	if r.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0, got %d", forum.ErrValidation, r.Limit)
	}
	if math.IsNaN(r.Threshold) || r.Threshold < 0 || r.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be within [0,1], got %v", forum.ErrValidation, r.Threshold)
	}
	return nil
}
