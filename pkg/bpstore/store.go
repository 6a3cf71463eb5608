// Package bpstore defines the storage service capability the channel façade
// consumes for its three queues (outgoing bundles, accepted payloads,
// outgoing DACS), plus memory/badger/s3 backends implementing it.
package bpstore

import (
	"context"
	"errors"

	"github.com/dtn-stack/bplib/pkg/active"
)

// SID is the opaque storage identifier a backend hands back from Enqueue.
// It is the same type active.Table indexes its slots by, so a Store can be
// passed directly wherever an active.BundleStore is expected.
type SID = active.SID

// ErrNotFound is returned by Retrieve when sid names nothing the backend
// holds.
var ErrNotFound = errors.New("bpstore: sid not found")

// ErrClosed is returned by any operation on a backend past Close.
var ErrClosed = errors.New("bpstore: store is closed")

// ErrEmpty is returned by Dequeue when the queue has nothing pending.
// Non-blocking callers (spec's CHECK timeout) treat this as "try later";
// blocking callers pass a ctx with a deadline and this package makes no
// attempt to wait internally — the channel façade owns that policy.
var ErrEmpty = errors.New("bpstore: queue is empty")

// Store is one storage handle: a FIFO queue of byte strings, each
// retrievable at random by the SID Enqueue assigned it. Three independent
// handles back a channel (outgoing bundles, accepted payloads, outgoing
// DACS); GetCount reports queue depth for backpressure/stats.
//
// This mirrors spec §6's seven-operation storage service (create/destroy
// folded into the constructor and Close; enqueue/dequeue/retrieve/
// relinquish/getcount map onto the methods below) with one Go-idiomatic
// change: the spec's per-call millisecond timeout (CHECK=0, PEND=-1) is
// replaced by context.Context, the teacher's convention for cancellable
// blocking calls.
type Store interface {
	// Enqueue appends data to the tail of the queue and returns the SID
	// the backend will recognize it by for Retrieve/Relinquish.
	Enqueue(ctx context.Context, data []byte) (SID, error)

	// Dequeue removes and returns the item at the head of the queue. It
	// returns ErrEmpty if nothing is pending.
	Dequeue(ctx context.Context) (data []byte, sid SID, err error)

	// Retrieve fetches the bytes retained under sid without removing them
	// from random-access storage (a dequeued bundle is retained until
	// Relinquish, e.g. for custody retransmit).
	Retrieve(sid SID) ([]byte, error)

	// Relinquish releases the retained copy under sid. It is not an error
	// to relinquish an already-released or unknown sid.
	Relinquish(sid SID) error

	// GetCount reports the number of items currently enqueued (pending
	// Dequeue), not counting items already dequeued but not yet
	// relinquished.
	GetCount() int

	// Close destroys the handle and releases any backing resources.
	Close() error
}
