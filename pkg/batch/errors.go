package batch

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by the batch package. Check them with errors.Is.
var (
	// ErrBeforeEpoch is wrapped by every ClockError.
	ErrBeforeEpoch = errors.New("batch: time precedes epoch")

	// ErrNoPredecessor is returned by Prev on the first batch.
	ErrNoPredecessor = errors.New("batch: no batch precedes batch 0")

	// ErrOutOfUint32Range is returned when an ID does not fit the 32-bit domain.
	ErrOutOfUint32Range = errors.New("batch: id exceeds 32-bit range")

	// ErrOverflow is the panic value for arithmetic past the largest ID.
	ErrOverflow = errors.New("batch: id overflow")
)

// ClockError reports a time that cannot be expressed as a non-negative
// offset from the epoch.
type ClockError struct {
	Time time.Time
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%v: %s", ErrBeforeEpoch, e.Time.UTC().Format(time.RFC3339Nano))
}

// Unwrap returns ErrBeforeEpoch.
func (e *ClockError) Unwrap() error {
	return ErrBeforeEpoch
}
