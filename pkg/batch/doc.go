// Package batch maps wall-clock time to batch identifiers and back.
//
// Time since the Unix epoch is cut into fixed slots of [Duration]. Slot n is
// named by ID(n) and covers [Epoch + n*Duration, Epoch + (n+1)*Duration).
// Every component that agrees on these constants agrees on which batch is
// current without talking to any other component.
//
// Each batch goes through two phases:
//
//   - Collecting: orders for batch N are accepted during its own slot.
//   - Solving: a solution for batch N may be submitted during the first
//     [SolvingWindow] of the slot of batch N+1.
//
// Collecting(N+1) and Solving(N) therefore start at the same instant.
//
// # Usage
//
//	id, err := batch.Current(time.Now())
//	if err != nil {
//	    return err
//	}
//	deadline := id.SolveEndTime()
//
// Use a [Clock] to read time through an injectable clockwork.Clock:
//
//	c := batch.NewClock(clockwork.NewRealClock())
//	solving, err := c.CurrentlyBeingSolved()
//
// # Encoding
//
// An ID encodes as the bare unsigned integer in JSON, text and CBOR; it is
// never wrapped in an object. The binary form is 8 bytes, big-endian.
//
// # Version
//
// Current version: 1.0.0
package batch
