package batch

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reads batch ids from an injectable time source.
type Clock struct {
	clock clockwork.Clock
}

// NewClock returns a Clock reading from c, or from the system clock if c is nil.
func NewClock(c clockwork.Clock) *Clock {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Clock{clock: c}
}

// Time returns the current time of the underlying clock.
func (c *Clock) Time() time.Time {
	return c.clock.Now()
}

// SecondsSinceEpoch returns the whole seconds elapsed since the epoch.
func (c *Clock) SecondsSinceEpoch() (uint64, error) {
	return SecondsSinceEpoch(c.clock.Now())
}

// Current returns the batch collecting orders now.
func (c *Clock) Current() (ID, error) {
	return Current(c.clock.Now())
}

// CurrentlyBeingSolved returns the batch whose solving phase started at the
// most recent slot boundary.
func (c *Clock) CurrentlyBeingSolved() (ID, error) {
	return CurrentlyBeingSolved(c.clock.Now())
}

// Snapshot returns the phase snapshot for now.
func (c *Clock) Snapshot() (Snapshot, error) {
	return SnapshotAt(c.clock.Now())
}

// Now is like Current but panics if the clock reads earlier than the epoch.
func (c *Clock) Now() ID {
	now := c.clock.Now()
	id, err := Current(now)
	if err != nil {
		panic(fmt.Errorf("clock earlier than Unix epoch: %w", err))
	}
	return id
}
