package batch

import (
	"fmt"
	"time"
)

// Event is a phase transition of a batch.
type Event int

const (
	// CollectionStarted fires at OrderCollectionStartTime.
	CollectionStarted Event = iota + 1
	// SolvingStarted fires at SolveStartTime, together with the next batch's
	// CollectionStarted.
	SolvingStarted
	// SolvingClosed fires at SolveEndTime.
	SolvingClosed
)

func (e Event) String() string {
	switch e {
	case CollectionStarted:
		return "collection_started"
	case SolvingStarted:
		return "solving_started"
	case SolvingClosed:
		return "solving_closed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Transition is an Event of a batch at an instant.
type Transition struct {
	Event Event
	Batch ID
	At    time.Time
}

// Snapshot describes which batches are in which phase at an instant.
type Snapshot struct {
	At time.Time

	// Collecting is the batch accepting orders.
	Collecting ID

	// Solving is the predecessor of Collecting. Only set if HasSolving.
	Solving    ID
	HasSolving bool

	// SolvingOpen reports whether Solving is still inside its solving window.
	SolvingOpen bool

	// Next is the first transition strictly after At.
	Next time.Time
}

// SnapshotAt returns the snapshot for t. A *ClockError is returned when t
// precedes the epoch.
func SnapshotAt(t time.Time) (Snapshot, error) {
	cur, err := Current(t)
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{At: t, Collecting: cur, Next: cur.SolveStartTime()}
	if prev, err := cur.Prev(); err == nil {
		s.Solving = prev
		s.HasSolving = true
		if end := prev.SolveEndTime(); t.Before(end) {
			s.SolvingOpen = true
			s.Next = end
		}
	}
	return s, nil
}

// Transitions returns the transitions in (from, to] in time order. Events at
// the same instant are ordered CollectionStarted before SolvingStarted.
func Transitions(from, to time.Time) ([]Transition, error) {
	var out []Transition
	if !to.After(from) {
		return out, nil
	}
	cursor := from
	if from.Before(Epoch) {
		if Epoch.After(to) {
			return out, nil
		}
		out = append(out, Transition{Event: CollectionStarted, Batch: 0, At: Epoch})
		cursor = Epoch
	}
	for {
		s, err := SnapshotAt(cursor)
		if err != nil {
			return nil, err
		}
		at := s.Next
		if at.After(to) {
			return out, nil
		}
		out = append(out, transitionsAt(s, at)...)
		cursor = at
	}
}

// transitionsAt returns the events at s.Next.
func transitionsAt(s Snapshot, at time.Time) []Transition {
	if s.SolvingOpen {
		return []Transition{{Event: SolvingClosed, Batch: s.Solving, At: at}}
	}
	next := s.Collecting.Next()
	return []Transition{
		{Event: CollectionStarted, Batch: next, At: at},
		{Event: SolvingStarted, Batch: s.Collecting, At: at},
	}
}
