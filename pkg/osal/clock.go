// Package osal is the OS adaptation capability: the thin clock and
// condition-variable primitives the channel façade needs and nothing else.
// spec §6 calls out calloc/free/strnlen/format/random alongside these, but a
// garbage-collected language with fmt and crypto/rand has no analogous gap
// to fill there — only the clock and the active-table condvar are ported.
package osal

import "time"

// Clock reports the current time as seconds since the Unix epoch, matching
// the storage/active-table timestamps the rest of this module works in.
// UnreliableTime is the spec's UNRELIABLE_TIME flag: a Clock is still
// expected to return its best guess even when it can't vouch for accuracy,
// rather than blocking the caller.
type Clock interface {
	Now() (secs uint64, unreliable bool)
}

// SystemClock is the production Clock, backed by time.Now. It never reports
// unreliable; the flag exists for test clocks that simulate a degraded
// source.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() (uint64, bool) {
	return uint64(time.Now().Unix()), false
}

// FixedClock is a test Clock that always reports a caller-set time.
type FixedClock struct {
	Secs       uint64
	Unreliable bool
}

// Now implements Clock.
func (c FixedClock) Now() (uint64, bool) { return c.Secs, c.Unreliable }
