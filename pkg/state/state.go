package state

import (
	"time"

	"github.com/bft-labs/batchclock/pkg/batch"
)

// State is what the watcher last observed.
type State struct {
	// LastCollecting is the newest batch seen collecting orders.
	LastCollecting batch.ID `json:"last_collecting"`

	// LastEvent is the name of the last transition handled.
	LastEvent string `json:"last_event"`

	// LastEventAt is when the last transition fired.
	LastEventAt time.Time `json:"last_event_at"`
}

// IsEmpty returns true if nothing has been observed yet.
func (s State) IsEmpty() bool {
	return s.LastEvent == ""
}

// EventResumed is recorded when the watcher (re)starts.
const EventResumed = "resumed"

// Resume records that the watcher started while id was collecting.
func (s *State) Resume(id batch.ID, at time.Time) {
	s.LastCollecting = id
	s.LastEvent = EventResumed
	s.LastEventAt = at.UTC()
}

// Observe records a transition. LastCollecting only moves forward.
func (s *State) Observe(ev batch.Event, id batch.ID, at time.Time) {
	if ev == batch.CollectionStarted && (s.IsEmpty() || id > s.LastCollecting) {
		s.LastCollecting = id
	}
	s.LastEvent = ev.String()
	s.LastEventAt = at.UTC()
}
