package custody

import (
	"github.com/dtn-stack/bplib/pkg/sdnv"
)

// Write drains a's runs into buf as an ACS record: type byte, status byte,
// the first run's CID (fixed width 4) and length (fixed width 2), then
// alternating gap/run SDNV pairs (fixed width 2) until either the
// accumulator empties or maxFillsPerDACS fields have been written. Each
// emitted run is popped from the accumulator's tree as it is written, so a
// partial write still drains exactly what it emitted. Returns the number
// of bytes written.
func Write(buf []byte, size int, a *Accumulator, maxFillsPerDACS int) (int, error) {
	if a.IsEmpty() {
		return 0, ErrEmptyAccumulator
	}
	if maxFillsPerDACS < 2 {
		maxFillsPerDACS = 2
	}
	if size < 2 {
		return 0, ErrShortBuffer
	}

	buf[0] = RecordType
	buf[1] = statusAckMask
	pos := 2

	it := a.tree.First()
	rng, _ := it.Next(true)

	n, _ := sdnv.Write(buf, size, sdnv.Record{Value: uint64(rng.Value), Index: pos, Width: 4})
	pos += n
	n, _ = sdnv.Write(buf, size, sdnv.Record{Value: uint64(rng.Offset) + 1, Index: pos, Width: 2})
	pos += n
	fillCount := 2
	prev := rng

	for fillCount+2 <= maxFillsPerDACS {
		next, ok := it.Next(true)
		if !ok {
			break
		}
		gap := uint64(next.Value) - (uint64(prev.Value) + uint64(prev.Offset) + 1)
		n, _ = sdnv.Write(buf, size, sdnv.Record{Value: gap, Index: pos, Width: 2})
		pos += n
		n, _ = sdnv.Write(buf, size, sdnv.Record{Value: uint64(next.Offset) + 1, Index: pos, Width: 2})
		pos += n
		fillCount += 2
		prev = next
	}

	return pos, nil
}
