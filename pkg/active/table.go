// Package active implements the active-table retransmit engine: CID
// allocation, the timeout/expiry scan loop, active-table-full wrap
// policies, and the circular-CID-buffer alternate design.
package active

import "github.com/dtn-stack/bplib/pkg/block"

// SID is an opaque storage identifier. SIDVacant is the distinguished value
// meaning "this slot holds no bundle" — chosen as the maximum uint64 rather
// than 0, since a real storage backend may legitimately hand out 0 as its
// first id.
type SID uint64

// SIDVacant marks an active-table slot or ring slot as unoccupied.
const SIDVacant SID = ^SID(0)

// Entry is one active-table slot: the retained bundle's storage id and the
// time it was last (re)transmitted.
type Entry struct {
	SID  SID
	Retx uint64
}

// Table is the bounded ring of in-flight custody-tracked bundles, indexed
// by cid mod len(entries).
type Table struct {
	entries []Entry
	oldest  uint64
	current uint64
}

// NewTable returns a Table with size slots, all initially vacant.
func NewTable(size int) *Table {
	t := &Table{entries: make([]Entry, size)}
	for i := range t.entries {
		t.entries[i].SID = SIDVacant
	}
	return t
}

// Oldest returns the oldest outstanding CID not yet acknowledged or
// retired.
func (t *Table) Oldest() uint64 { return t.oldest }

// Current returns the next CID that will be assigned.
func (t *Table) Current() uint64 { return t.current }

// Len returns the active-table size (the ring modulus).
func (t *Table) Len() int { return len(t.entries) }

func (t *Table) slot(cid uint64) int { return int(cid % uint64(len(t.entries))) }

// OccupiedCount reports how many slots currently hold a bundle.
func (t *Table) OccupiedCount() int {
	n := 0
	for _, e := range t.entries {
		if e.SID != SIDVacant {
			n++
		}
	}
	return n
}

// Install assigns sid the next CID, occupying its slot and stamping the
// retransmit clock to sysnow. It returns the assigned CID and the slot
// index it was installed at.
func (t *Table) Install(sid SID, sysnow uint64) (cid uint64, ati int) {
	ati = t.slot(t.current)
	t.entries[ati] = Entry{SID: sid, Retx: sysnow}
	cid = t.current
	t.current++
	return cid, ati
}

// Touch stamps the retransmit clock at slot ati, for the cid_reuse
// retransmit path where the same slot is kept rather than reinstalled.
func (t *Table) Touch(ati int, sysnow uint64) { t.entries[ati].Retx = sysnow }

// Vacate clears slot ati and returns the SID it held (SIDVacant if it was
// already empty).
func (t *Table) Vacate(ati int) SID {
	sid := t.entries[ati].SID
	t.entries[ati].SID = SIDVacant
	return sid
}

// AckCID vacates the slot holding cid, if cid is still within the
// [oldest, current) window. Used by the
// custody engine's ack callback; returns the relinquished SID or
// SIDVacant if there was nothing to acknowledge.
func (t *Table) AckCID(cid uint64) SID {
	if cid < t.oldest || cid >= t.current {
		return SIDVacant
	}
	return t.Vacate(t.slot(cid))
}

// BundleStore is the subset of the storage service capability the scan
// loop needs: random-access retrieval by SID and release of a retained
// copy. Dequeue of fresh bundles is handled one layer up, in the channel,
// since a timed-out scan never needs it.
type BundleStore interface {
	Retrieve(sid SID) ([]byte, error)
	Relinquish(sid SID) error
}

// Flush relinquishes every occupied slot between oldest and current and
// sweeps oldest up to current, as the channel's flush operation requires.
// It returns the number of bundles lost this way.
func (t *Table) Flush(store BundleStore) int {
	lost := 0
	for t.oldest != t.current {
		ati := t.slot(t.oldest)
		if t.entries[ati].SID != SIDVacant {
			store.Relinquish(t.entries[ati].SID)
			t.entries[ati].SID = SIDVacant
			lost++
		}
		t.oldest++
	}
	return lost
}

// peekExpiry reads just enough of a bundle's primary block to compute its
// expiry time, without the BIB verification a full bundle.Parse performs —
// the scan loop calls this on every pass and does not need to re-verify
// integrity on every retransmit check.
func peekExpiry(data []byte) (exprtime uint64, err error) {
	p := &block.Primary{}
	_, _, err = block.ReadPrimary(data, len(data), p)
	if err != nil {
		return 0, err
	}
	if p.Lifetime.Value == 0 {
		return 0, nil
	}
	return p.CreateSec.Value + p.Lifetime.Value, nil
}

// peekHasCTEB reports whether a bundle's first extension block is a CTEB,
// i.e. whether it was sent with custody requested.
func peekHasCTEB(data []byte) (bool, error) {
	p := &block.Primary{}
	n, _, err := block.ReadPrimary(data, len(data), p)
	if err != nil {
		return false, err
	}
	if n >= len(data) {
		return false, nil
	}
	return data[n] == block.TypeCTEB, nil
}

// HasCustody is the exported form of peekHasCTEB, used by the channel
// façade at emission time to decide whether to install an active-table
// entry at all.
func HasCustody(data []byte) (bool, error) { return peekHasCTEB(data) }
