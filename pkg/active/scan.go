package active

import "github.com/dtn-stack/bplib/pkg/bundle"

// Status discriminates what Scan found.
type Status int

const (
	// StatusNone means the scan found nothing to retransmit; the caller
	// should dequeue a fresh bundle from storage instead.
	StatusNone Status = iota
	// StatusSelected means a bundle (new retransmit or cid-reused resend)
	// was chosen; ScanResult.Data carries its bytes.
	StatusSelected
	// StatusOverflow means wrap_response=BLOCK and the table is full;
	// the caller should report OVERFLOW.
	StatusOverflow
)

// Flags mirrors the per-call flag bits this package can raise.
type Flags uint32

const (
	// FlagActiveTableWrap is set whenever the wrap check at current_cid
	// finds an occupied slot, regardless of which wrap policy applies.
	FlagActiveTableWrap Flags = 1 << iota
	// FlagStoreFailure is set when the storage retrieve for a wrap=RESEND
	// retransmission fails.
	FlagStoreFailure
)

// Outcome accumulates statistics counter deltas a Scan call produced. The
// caller (the channel façade) folds these into its own counters rather
// than this package mutating a shared stats struct directly.
type Outcome struct {
	Lost          int
	Expired       int
	Retransmitted int
}

// ScanParams carries the subset of channel attributes the scan loop
// consults.
type ScanParams struct {
	Timeout  uint64
	CIDReuse bool
	Wrap     bundle.WrapResponse
}

// ScanResult is what Scan found.
type ScanResult struct {
	Data    []byte
	SID     SID
	ATI     int
	NewCID  bool
	Status  Status
	Flags   Flags
	Outcome Outcome
}

// waitFn is the active-table condition variable wait the channel supplies;
// a nil waitFn is a no-op, useful for tests that don't care about the
// WRAP_TIMEOUT pause.
type waitFn func()

// Scan runs one pass of the timeout/expiry/wrap algorithm over t. It
// mutates t's oldest/current cursors and slot occupancy as it goes, and
// calls store for any bundle it needs to re-examine. wait is invoked at
// the two points the original blocks on the active-table condition
// variable for BP_WRAP_TIMEOUT.
func Scan(t *Table, sysnow uint64, p ScanParams, store BundleStore, wait waitFn) ScanResult {
	var out Outcome

	for t.oldest != t.current {
		ati := t.slot(t.oldest)
		sid := t.entries[ati].SID

		if sid == SIDVacant {
			t.oldest++
			continue
		}

		data, err := store.Retrieve(sid)
		if err != nil {
			store.Relinquish(sid)
			t.entries[ati].SID = SIDVacant
			out.Lost++
			// oldest is not advanced here: the next pass sees this slot
			// vacant and advances then, mirroring the two-step cleanup
			// in the original scan loop.
			continue
		}

		exprtime, perr := peekExpiry(data)
		if perr == nil && exprtime != 0 && sysnow >= exprtime {
			store.Relinquish(sid)
			t.entries[ati].SID = SIDVacant
			t.oldest++
			out.Expired++
			continue
		}

		if p.Timeout != 0 && sysnow >= t.entries[ati].Retx+p.Timeout {
			t.oldest++
			out.Retransmitted++
			newcid := true
			if p.CIDReuse {
				newcid = false
			} else {
				t.entries[ati].SID = SIDVacant
			}
			return ScanResult{Data: data, SID: sid, ATI: ati, NewCID: newcid, Status: StatusSelected, Outcome: out}
		}

		// Oldest entry is still live. Check whether current_cid's slot
		// is occupied before letting the caller dequeue a fresh bundle —
		// dequeuing first and having nowhere to put it is not an option.
		wati := t.slot(t.current)
		wsid := t.entries[wati].SID
		result := ScanResult{Status: StatusNone, Outcome: out}
		if wsid != SIDVacant {
			result.Flags |= FlagActiveTableWrap
			switch p.Wrap {
			case bundle.WrapResend:
				t.oldest++
				wdata, werr := store.Retrieve(wsid)
				if werr != nil {
					store.Relinquish(wsid)
					t.entries[wati].SID = SIDVacant
					result.Flags |= FlagStoreFailure
					out.Lost++
					result.Outcome = out
				} else {
					out.Retransmitted++
					result.Outcome = out
					result.Data = wdata
					result.SID = wsid
					result.ATI = wati
					result.NewCID = false
					result.Status = StatusSelected
					if wait != nil {
						wait()
					}
				}
			case bundle.WrapBlock:
				result.Status = StatusOverflow
				if wait != nil {
					wait()
				}
			default: // bundle.WrapDrop
				t.oldest++
				store.Relinquish(wsid)
				t.entries[wati].SID = SIDVacant
				out.Lost++
				result.Outcome = out
			}
		}
		return result
	}

	return ScanResult{Status: StatusNone, Outcome: out}
}
