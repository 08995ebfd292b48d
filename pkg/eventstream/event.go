package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSearchCompleted is emitted after a search finishes, whether
	// or not it succeeded.
	EventTypeSearchCompleted = "forumsearch.search.completed"
)

// SearchCompletedEvent is a transport-neutral event payload for a finished
// search.
type SearchCompletedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	Search        SearchMeta   `json:"search"`
	Outcome       SearchResult `json:"outcome"`
}

// EventSource identifies the service that ran the search.
type EventSource struct {
	Service string `json:"service"`
	Forum   string `json:"forum,omitempty"`
}

// SearchMeta captures the request parameters.
type SearchMeta struct {
	Kind      string  `json:"kind"`
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

// SearchResult captures what the search produced.
type SearchResult struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	ResultCount int       `json:"result_count"`
	TopScore    float64   `json:"top_score,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewSearchCompletedEvent stamps a new event with an ID, the current time
// and the v1 schema.
func NewSearchCompletedEvent(source EventSource, search SearchMeta, outcome SearchResult) *SearchCompletedEvent {
	if outcome.DurationMs == 0 && !outcome.StartedAt.IsZero() && !outcome.CompletedAt.IsZero() {
		outcome.DurationMs = outcome.CompletedAt.Sub(outcome.StartedAt).Milliseconds()
	}

	return &SearchCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSearchCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Search:        search,
		Outcome:       outcome,
	}
}
