package custody

import "github.com/dtn-stack/bplib/pkg/sdnv"

// Read decodes an ACS record and invokes ack for every custody ID in every
// acknowledged run, in CID order. It returns how many of those calls
// reported success.
//
// Record layout: type byte, status byte, first CID, first run length, then
// alternating gap/run SDNV pairs until the buffer is exhausted. A run
// following a gap is always the acknowledged side of the pair; the reader
// alternates starting from "CID in" so the first run is always
// acknowledged.
func Read(rec []byte, ack func(cid uint64) bool) (int, error) {
	if len(rec) < 2 {
		return 0, ErrShortRecord
	}
	if rec[0] != RecordType {
		return 0, ErrNotACS
	}
	ackSuccess := rec[1]&statusAckMask != 0
	size := len(rec)

	cidRec := sdnv.Record{Index: 2, Width: -1}
	n, flags := sdnv.Read(rec, size, &cidRec)
	if flags != 0 {
		return 0, ErrMalformed
	}
	pos := 2 + n
	cid := cidRec.Value

	cidIn := true
	ackCount := 0
	for pos < size {
		fillRec := sdnv.Record{Index: pos, Width: -1}
		m, flags := sdnv.Read(rec, size, &fillRec)
		if flags != 0 {
			return ackCount, ErrMalformed
		}
		pos += m

		if cidIn && ackSuccess {
			cidIn = false
			for i := uint64(0); i < fillRec.Value; i++ {
				if ack(cid + i) {
					ackCount++
				}
			}
		} else {
			cidIn = true
		}
		cid += fillRec.Value
	}

	return ackCount, nil
}
