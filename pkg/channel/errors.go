package channel

import "fmt"

// Taxon-level sentinels realize spec §7's error taxonomy. Every StatusError
// this package returns wraps exactly one of these, so a caller can test
// with errors.Is(err, channel.ErrStorage) without caring which specific
// operation or backend produced it.
var (
	// ErrParameter means a caller-supplied argument was invalid: Open was
	// given a nil storage handle.
	ErrParameter = fmt.Errorf("channel: invalid parameter")
	// ErrResource means a bounded internal structure is exhausted: the
	// active table is full under wrap=BLOCK.
	ErrResource = fmt.Errorf("channel: resource exhausted")
	// ErrStorage means the underlying storage service failed.
	ErrStorage = fmt.Errorf("channel: storage operation failed")
	// ErrProtocol means the bundle on the wire was malformed or failed
	// integrity verification.
	ErrProtocol = fmt.Errorf("channel: protocol violation")
	// ErrLifecycle means the operation was attempted against a channel in
	// the wrong state: the channel is closed.
	ErrLifecycle = fmt.Errorf("channel: lifecycle state error")
	// ErrTransient means the condition is expected to clear on its own: no
	// bundle or payload became available before the timeout.
	ErrTransient = fmt.Errorf("channel: transient failure")
)

// Sentinel causes a StatusError's Err field commonly wraps.
var (
	// ErrClosed is returned by any operation on a channel past Close.
	ErrClosed = fmt.Errorf("channel: channel is closed")
	// ErrTimeout is returned by Load/Accept when no bundle or payload
	// became available before the caller's deadline.
	ErrTimeout = fmt.Errorf("channel: timed out waiting")
	// ErrOverflow is returned by Load when wrap_response=BLOCK and the
	// active table has no vacant slot.
	ErrOverflow = fmt.Errorf("channel: active table overflow")
)

// StatusError wraps a sentinel cause with the operational context spec §7
// asks for: which component raised it and which CID/SID it concerns.
// Mirrors the teacher's PayloadError: a thin struct carrying contextual
// fields plus the two errors a caller might match against.
type StatusError struct {
	Op      string // the façade operation: "store", "load", "process", "accept", ...
	Channel string

	CID uint64 // 0 if not applicable
	SID uint64 // 0 if not applicable

	Taxon error // one of the taxon-level sentinels above
	Err   error // the specific cause; may be Taxon itself
}

func (e *StatusError) Error() string {
	switch {
	case e.CID != 0 && e.SID != 0:
		return fmt.Sprintf("channel %s[%s]: cid=%d sid=%d: %s", e.Op, e.Channel, e.CID, e.SID, e.Err)
	case e.CID != 0:
		return fmt.Sprintf("channel %s[%s]: cid=%d: %s", e.Op, e.Channel, e.CID, e.Err)
	case e.SID != 0:
		return fmt.Sprintf("channel %s[%s]: sid=%d: %s", e.Op, e.Channel, e.SID, e.Err)
	default:
		return fmt.Sprintf("channel %s[%s]: %s", e.Op, e.Channel, e.Err)
	}
}

// Unwrap exposes both the taxon sentinel and the specific cause to
// errors.Is/errors.As, so callers can match at whichever granularity they
// need.
func (e *StatusError) Unwrap() []error {
	if e.Taxon == nil || e.Taxon == e.Err {
		return []error{e.Err}
	}
	return []error{e.Taxon, e.Err}
}

func newStatusError(op, channelName string, taxon, err error) *StatusError {
	return &StatusError{Op: op, Channel: channelName, Taxon: taxon, Err: err}
}
