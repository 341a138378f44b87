package batch

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"time"
)

// Duration is the total time in a batch.
const Duration = 300 * time.Second

// SolvingWindow is the time in the following batch during which a solution
// for a batch may be submitted.
const SolvingWindow = 240 * time.Second

// Fails to compile if SolvingWindow exceeds Duration.
const _ = uint64(Duration - SolvingWindow)

const durationSecs = uint64(Duration / time.Second)

// Seconds between year 1 and 1970, the offset time.Time stores Unix times with.
const unixToInternal = (1969*365 + 1969/4 - 1969/100 + 1969/400) * 24 * 60 * 60

// maxTimestamp is the largest slot start whose solve end time still fits in a
// time.Time.
const maxTimestamp = math.MaxInt64 - unixToInternal - 2*durationSecs

// MaxID is the largest ID whose window boundaries, and the collection start of
// its successor, are representable as time.Time.
const MaxID = ID(maxTimestamp/durationSecs) - 1

// Epoch is the instant batch 0 starts.
var Epoch = time.Unix(0, 0).UTC()

// ID wraps a batch id as used by the settlement contract. Ordering, equality
// and hashing are those of the underlying integer.
type ID uint64

// FromTimestamp returns the batch containing the given Unix timestamp.
func FromTimestamp(timestamp uint64) ID {
	return ID(timestamp / durationSecs)
}

// Current returns the batch containing now. A *ClockError is returned when now
// precedes the epoch.
func Current(now time.Time) (ID, error) {
	secs, err := SecondsSinceEpoch(now)
	if err != nil {
		return 0, err
	}
	return FromTimestamp(secs), nil
}

// Now returns the batch for the current system time.
//
// It panics if the system clock reads earlier than the Unix epoch.
func Now() ID {
	id, err := Current(time.Now())
	if err != nil {
		panic(fmt.Errorf("system time earlier than Unix epoch: %w", err))
	}
	return id
}

// CurrentlyBeingSolved returns the batch whose solving phase started at the
// most recent slot boundary, i.e. the predecessor of Current(now). During the
// first batch after the epoch the returned error wraps ErrNoPredecessor.
func CurrentlyBeingSolved(now time.Time) (ID, error) {
	id, err := Current(now)
	if err != nil {
		return 0, err
	}
	prev, err := id.Prev()
	if err != nil {
		return 0, fmt.Errorf("solving batch at %s: %w", now.UTC().Format(time.RFC3339), err)
	}
	return prev, nil
}

// SecondsSinceEpoch returns the whole seconds elapsed between the epoch and t.
func SecondsSinceEpoch(t time.Time) (uint64, error) {
	if t.Before(Epoch) {
		return 0, &ClockError{Time: t}
	}
	return uint64(t.Unix()), nil
}

// AsTimestamp returns the Unix timestamp of the first second of the batch.
// It panics if the result does not fit in a uint64.
func (id ID) AsTimestamp() uint64 {
	hi, lo := bits.Mul64(uint64(id), durationSecs)
	if hi != 0 {
		panic(fmt.Errorf("%w: timestamp of batch %d", ErrOverflow, uint64(id)))
	}
	return lo
}

// OrderCollectionStartTime is the first instant orders for the batch are
// accepted.
func (id ID) OrderCollectionStartTime() time.Time {
	ts := id.AsTimestamp()
	if ts > maxTimestamp {
		panic(fmt.Errorf("%w: batch %d starts past the representable time range", ErrOverflow, uint64(id)))
	}
	return time.Unix(int64(ts), 0).UTC()
}

// SolveStartTime is the first instant a solution for the batch is accepted.
// It equals id.Next().OrderCollectionStartTime().
func (id ID) SolveStartTime() time.Time {
	return id.OrderCollectionStartTime().Add(Duration)
}

// SolveEndTime is the instant after which a solution for the batch is no
// longer accepted.
func (id ID) SolveEndTime() time.Time {
	return id.SolveStartTime().Add(SolvingWindow)
}

// Next returns the following batch. It panics on overflow.
func (id ID) Next() ID {
	if id == math.MaxUint64 {
		panic(fmt.Errorf("%w: no batch follows %d", ErrOverflow, uint64(id)))
	}
	return id + 1
}

// Prev returns the preceding batch, or ErrNoPredecessor for batch 0.
func (id ID) Prev() (ID, error) {
	if id == 0 {
		return 0, ErrNoPredecessor
	}
	return id - 1, nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
