package domain

import "time"

// QueryOutcome is the terminal result of a submission.
type QueryOutcome string

const (
	OutcomeSuccess   QueryOutcome = "success"
	OutcomeEmpty     QueryOutcome = "empty_query"
	OutcomeTransport QueryOutcome = "transport_error"
	OutcomeService   QueryOutcome = "service_error"
	OutcomeStale     QueryOutcome = "stale"
)

// QueryLogEntry records one submission for auditing.
type QueryLogEntry struct {
	ID            string        `json:"id"`
	SessionID     string        `json:"session_id"`
	Token         uint64        `json:"token"`
	Prompt        string        `json:"prompt"`
	Region        *QueryRegion  `json:"region,omitempty"`
	Outcome       QueryOutcome  `json:"outcome"`
	TotalFeatures int           `json:"total_features"`
	Entities      []string      `json:"entities"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CatalogEntry describes a known entity and its image asset.
type CatalogEntry struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// SessionEvent is published for every observable session transition.
type SessionEvent struct {
	SessionID string         `json:"session_id"`
	Kind      string         `json:"kind"`
	Token     uint64         `json:"token"`
	Name      string         `json:"name,omitempty"`
	Status    *StatusMessage `json:"status,omitempty"`
	Fit       *Bounds        `json:"fit,omitempty"`
	Lists     *DisplayLists  `json:"lists,omitempty"`
	At        time.Time      `json:"at"`
}

// Event kinds.
const (
	EventQuerySucceeded = "query_succeeded"
	EventQueryFailed    = "query_failed"
	EventPinned         = "pinned"
	EventUnpinned       = "unpinned"
	EventStatus         = "status"
	EventFit            = "fit"
	EventCleared        = "cleared"
)
