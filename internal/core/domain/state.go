package domain

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// Phase is the query lifecycle position of a session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// StatusKind classifies a status message for display.
type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusOK      StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusInfo    StatusKind = "info"
)

// StatusMessage is a transient, self-clearing notice. A zero ExpiresAt
// never expires.
type StatusMessage struct {
	Text      string     `json:"text"`
	Kind      StatusKind `json:"kind"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// Visible reports whether the message should still be shown at now.
func (m StatusMessage) Visible(now time.Time) bool {
	if m.Text == "" {
		return false
	}
	return m.ExpiresAt.IsZero() || now.Before(m.ExpiresAt)
}

// DisplayLists are the entity names shown to the user.
type DisplayLists struct {
	TransientNames []string `json:"transient_names"`
	PinnedNames    []string `json:"pinned_names"`
}

// State is one session's engine state. Values are treated as immutable:
// transitions return a new State and never mutate slices or maps in place.
type State struct {
	Phase          Phase         `json:"phase"`
	Outcome        QueryOutcome  `json:"last_outcome,omitempty"`
	Token          uint64        `json:"token"`
	Prompt         string        `json:"prompt,omitempty"`
	Region         *QueryRegion  `json:"region,omitempty"`
	Viewport       *Viewport     `json:"viewport,omitempty"`
	Transient      ResultSet     `json:"-"`
	Pinned         ResultSet     `json:"-"`
	TransientNames []string      `json:"transient_names"`
	PinnedNames    []string      `json:"pinned_names"`
	Status         StatusMessage `json:"status"`
	FitPending     bool          `json:"fit_pending"`
	Fit            Bounds        `json:"fit"`
	TotalFeatures  int           `json:"total_features"`
}

// NewState returns the initial idle state with the world view.
func NewState() State {
	return State{
		Phase:          PhaseIdle,
		Transient:      ResultSet{},
		Pinned:         ResultSet{},
		TransientNames: []string{},
		PinnedNames:    []string{},
		Fit:            WorldBounds,
	}
}

// Lists returns the current display lists.
func (s State) Lists() DisplayLists {
	return DisplayLists{TransientNames: s.TransientNames, PinnedNames: s.PinnedNames}
}

// IsPinned reports whether name is in the pinned list.
func (s State) IsPinned(name string) bool {
	for _, n := range s.PinnedNames {
		if n == name {
			return true
		}
	}
	return false
}

// Layer is one labeled collection handed to the map renderer.
type Layer struct {
	DatasetID  string                     `json:"dataset_id"`
	Pinned     bool                       `json:"pinned"`
	Color      string                     `json:"color"`
	Collection *geojson.FeatureCollection `json:"collection"`
}

// RenderPayload is everything the renderer needs for one frame.
type RenderPayload struct {
	Token  uint64  `json:"token"`
	Layers []Layer `json:"layers"`
	Fit    Bounds  `json:"fit"`
}
