// Package custody implements the ACS/DACS engine: accumulating received
// custody IDs into a bounded red-black interval tree, and the bit-exact
// gap/run fill codec for the ACS admin-record payload (record type 0x40).
package custody

import "github.com/dtn-stack/bplib/pkg/rbtree"

// RecordType is the admin-record type byte identifying an ACS payload.
const RecordType byte = 0x40

// statusAckMask is the one status bit this implementation uses: set means
// every run in the record is an acknowledgment (the only kind of DACS this
// engine ever emits or expects to receive).
const statusAckMask byte = 0x01

// Accumulator collects received custody IDs for one source into a bounded
// set of coalesced runs, ready to be drained into a DACS record.
type Accumulator struct {
	tree      *rbtree.Tree
	lastFlush uint64
}

// NewAccumulator returns an Accumulator whose node pool holds at most
// maxSize disjoint ranges.
func NewAccumulator(maxSize int) *Accumulator {
	return &Accumulator{tree: rbtree.New(maxSize)}
}

// Receive records cid as acknowledged, coalescing it into an adjacent run
// if one exists.
func (a *Accumulator) Receive(cid uint32) rbtree.Status {
	return a.tree.Insert(cid)
}

// IsEmpty reports whether there is nothing pending to acknowledge.
func (a *Accumulator) IsEmpty() bool { return a.tree.IsEmpty() }

// Size reports the number of distinct runs currently held.
func (a *Accumulator) Size() int { return a.tree.Size() }

// ShouldFlush reports whether the accumulator should be drained into a
// DACS now: the rate timer has elapsed, or the run count has grown large
// enough that a write would approach max_gaps_per_dacs.
func (a *Accumulator) ShouldFlush(sysnow, dacsRate uint64, maxGapsPerDACS int) bool {
	if a.IsEmpty() {
		return false
	}
	if dacsRate != 0 && sysnow-a.lastFlush >= dacsRate {
		return true
	}
	if maxGapsPerDACS > 0 && a.Size() >= maxGapsPerDACS {
		return true
	}
	return false
}

// MarkFlushed records sysnow as the last time this accumulator was
// drained, resetting the rate timer.
func (a *Accumulator) MarkFlushed(sysnow uint64) { a.lastFlush = sysnow }
