// Package block implements the BPv6 block codecs: primary, CTEB, BIB, and
// payload. Each codec reads and writes a flat byte
// buffer in declared field order and records the byte offset each field
// began at, so a prebuilt template's mutable fields (creation time, CID,
// payload length, BIB checksum) can be patched in place without a full
// reparse.
package block

import (
	"errors"
	"fmt"

	"github.com/dtn-stack/bplib/pkg/sdnv"
)

// Flags reports the conditions a block codec call observed, mirroring the
// sdnv package's own Flags one layer down.
type Flags uint32

const (
	FlagOverflow Flags = 1 << iota
	FlagIncomplete
	// FlagBIBMismatch names a recomputed checksum that does not match the
	// security result carried on the wire. No codec in this package sets
	// it; BIB.Verify reports a mismatch through its bool result.
	FlagBIBMismatch
)

var (
	// ErrShortBuffer is returned when a block's declared length would read
	// or write past the end of the supplied buffer.
	ErrShortBuffer = errors.New("block: buffer too short")
	// ErrBadVersion is returned by primary block parsing when the version
	// byte is not 6.
	ErrBadVersion = errors.New("block: unsupported bundle version")
	// ErrUnknownType is returned when an extension block's type byte does
	// not match any codec this package knows.
	ErrUnknownType = errors.New("block: unknown block type")
)

// Extension block type bytes. CTEB and BIB are local extension-block type
// codes; this implementation only ever talks to itself end to end, so no
// external BPv6 stack needs to recognize them.
const (
	TypePayload byte = 1
	TypeCTEB    byte = 10
	TypeBIB     byte = 11
)

// Field is one SDNV-encoded value within a block: its decoded value, the
// byte offset it began at (captured on read or write, used for Update
// patching), and its width (-1 means the field was written at minimum
// variable width and cannot be patched in place).
type Field struct {
	Value  uint64
	Offset int
	Width  int
}

// cursor threads field reads/writes through a buffer, accumulating flags.
type cursor struct {
	buf   []byte
	size  int
	pos   int
	flags Flags
}

func (c *cursor) readField(width int) Field {
	f := Field{Offset: c.pos, Width: width}
	rec := sdnv.Record{Index: c.pos, Width: width}
	n, flags := sdnv.Read(c.buf, c.size, &rec)
	f.Value = rec.Value
	c.pos += n
	c.flags |= translateSDNVFlags(flags)
	return f
}

func (c *cursor) writeField(value uint64, width int) Field {
	f := Field{Value: value, Offset: c.pos, Width: width}
	n, flags := sdnv.Write(c.buf, c.size, sdnv.Record{Value: value, Index: c.pos, Width: width})
	c.pos += n
	c.flags |= translateSDNVFlags(flags)
	return f
}

func translateSDNVFlags(f sdnv.Flags) Flags {
	var out Flags
	if f&sdnv.FlagOverflow != 0 {
		out |= FlagOverflow
	}
	if f&sdnv.FlagIncomplete != 0 {
		out |= FlagIncomplete
	}
	return out
}

// Patch overwrites an already-written field's value in place. The field
// must have a fixed (non-negative) width matching what was originally
// written, so the buffer layout around it is undisturbed.
func Patch(buf []byte, f Field, value uint64) (Flags, error) {
	if f.Width < 0 {
		return 0, fmt.Errorf("block: cannot patch variable-width field at offset %d", f.Offset)
	}
	if f.Offset+f.Width > len(buf) {
		return 0, ErrShortBuffer
	}
	_, flags := sdnv.Write(buf, len(buf), sdnv.Record{Value: value, Index: f.Offset, Width: f.Width})
	return translateSDNVFlags(flags), nil
}
