package batch

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_FollowsFakeClock(t *testing.T) {
	fc := clockwork.NewFakeClockAt(Epoch)
	c := NewClock(fc)

	id, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, ID(0), id)

	_, err = c.CurrentlyBeingSolved()
	require.ErrorIs(t, err, ErrNoPredecessor)

	fc.Advance(Duration)
	assert.Equal(t, ID(1), c.Now())

	solving, err := c.CurrentlyBeingSolved()
	require.NoError(t, err)
	assert.Equal(t, ID(0), solving)

	s, err := c.Snapshot()
	require.NoError(t, err)
	assert.True(t, s.SolvingOpen)
	assert.True(t, c.Time().Equal(Epoch.Add(Duration)))

	fc.Advance(1500 * time.Millisecond)
	secs, err := c.SecondsSinceEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(301), secs)
}

func TestClock_BeforeEpoch(t *testing.T) {
	c := NewClock(clockwork.NewFakeClockAt(Epoch.Add(-time.Hour)))

	_, err := c.Current()
	require.ErrorIs(t, err, ErrBeforeEpoch)

	_, err = c.CurrentlyBeingSolved()
	require.ErrorIs(t, err, ErrBeforeEpoch)

	_, err = c.SecondsSinceEpoch()
	require.ErrorIs(t, err, ErrBeforeEpoch)

	assert.Panics(t, func() { c.Now() })
}

func TestNewClock_DefaultsToSystemClock(t *testing.T) {
	c := NewClock(nil)
	assert.WithinDuration(t, time.Now(), c.Time(), time.Minute)
}
