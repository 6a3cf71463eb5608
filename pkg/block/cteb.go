package block

// CTEB is the Custody Transfer Extension Block: it names the current
// custodian and the custody ID the bundle is filed under in that
// custodian's active table.
type CTEB struct {
	BlockFlags  Field
	BlockLength Field

	CstNode, CstService Field
	CustodyID           Field
}

// ReadCTEB parses a CTEB whose type byte has already been consumed by the
// caller (see bundle.Parse); buf[:size] starts at the processing flags.
func ReadCTEB(buf []byte, size int, b *CTEB) (int, Flags) {
	c := &cursor{buf: buf, size: size, pos: 0}
	b.BlockFlags = c.readField(-1)
	b.BlockLength = c.readField(-1)
	b.CstNode = c.readField(-1)
	b.CstService = c.readField(-1)
	b.CustodyID = c.readField(-1)
	return c.pos, c.flags
}

// WriteCTEB emits the type byte followed by the CTEB fields. CustodyID is
// written with a fixed 8-byte width so Patch can stamp in the active
// table's current CID at send time without rebuilding the template.
func WriteCTEB(buf []byte, size int, b *CTEB) (int, Flags, error) {
	if size < 1 {
		return 0, 0, ErrShortBuffer
	}
	buf[0] = TypeCTEB
	c := &cursor{buf: buf, size: size, pos: 1}
	b.BlockFlags = c.writeField(b.BlockFlags.Value, -1)
	b.BlockLength = c.writeField(b.BlockLength.Value, -1)
	b.CstNode = c.writeField(b.CstNode.Value, -1)
	b.CstService = c.writeField(b.CstService.Value, -1)
	b.CustodyID = c.writeField(b.CustodyID.Value, 8)
	return c.pos, c.flags, nil
}
