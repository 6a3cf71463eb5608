package active

import "errors"

// ErrOverflow is returned by Ring.Add when the target slot is occupied and
// overwrite was not requested.
var ErrOverflow = errors.New("active: ring slot occupied")

// Ring is the circular-CID-buffer alternate active-table design: a
// fixed-size ring indexed directly by CID rather than the hash/mod scheme
// of Table, with explicit oldest/newest markers.
type Ring struct {
	entries []Entry
	oldest  uint64
	newest  uint64
}

// NewRing returns a Ring with size slots, all initially vacant.
func NewRing(size int) *Ring {
	r := &Ring{entries: make([]Entry, size)}
	for i := range r.entries {
		r.entries[i].SID = SIDVacant
	}
	return r
}

func (r *Ring) slot(cid uint64) int { return int(cid % uint64(len(r.entries))) }

// Add installs entry at newest_cid mod size and advances newest_cid. If
// the target slot is occupied and overwrite is false, it returns
// ErrOverflow and leaves the ring unchanged; if overwrite is true the
// occupant is silently dropped.
func (r *Ring) Add(entry Entry, overwrite bool) error {
	i := r.slot(r.newest)
	if r.entries[i].SID != SIDVacant && !overwrite {
		return ErrOverflow
	}
	r.entries[i] = entry
	r.newest++
	return nil
}

// Next reads the slot at oldest_cid mod size and advances oldest_cid if it
// was occupied. It returns false if the ring is empty (oldest == newest).
func (r *Ring) Next() (Entry, bool) {
	if r.oldest == r.newest {
		return Entry{}, false
	}
	i := r.slot(r.oldest)
	e := r.entries[i]
	if e.SID != SIDVacant {
		r.oldest++
	}
	return e, e.SID != SIDVacant
}

// Remove vacates the slot for cid directly, by index, and returns the
// entry that occupied it.
func (r *Ring) Remove(cid uint64) Entry {
	i := r.slot(cid)
	e := r.entries[i]
	r.entries[i] = Entry{SID: SIDVacant}
	return e
}

// Available reports whether cid names an occupied slot within the live
// window [oldest_cid, newest_cid).
func (r *Ring) Available(cid uint64) bool {
	if cid < r.oldest || cid >= r.newest {
		return false
	}
	return r.entries[r.slot(cid)].SID != SIDVacant
}

// Count returns newest_cid - oldest_cid.
func (r *Ring) Count() uint64 { return r.newest - r.oldest }
