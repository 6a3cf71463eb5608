package block

// Payload is the BPv6 payload block: processing flags, an SDNV length, and
// the raw application data.
type Payload struct {
	BlockFlags Field
	Length     Field
	Data       []byte
}

// ReadPayload parses a payload block whose type byte has already been
// consumed; buf[:size] starts at the processing flags. Data aliases the
// backing buffer.
func ReadPayload(buf []byte, size int, p *Payload) (int, Flags) {
	c := &cursor{buf: buf, size: size, pos: 0}
	p.BlockFlags = c.readField(-1)
	p.Length = c.readField(-1)

	n := int(p.Length.Value)
	if c.pos+n > size {
		c.flags |= FlagIncomplete
		n = size - c.pos
	}
	p.Data = buf[c.pos : c.pos+n]
	c.pos += n
	return c.pos, c.flags
}

// WritePayload emits the type byte, flags, a fixed-width length field (so
// Patch can update it without touching the data that follows), and data.
func WritePayload(buf []byte, size int, p *Payload) (int, Flags, error) {
	if size < 1 {
		return 0, 0, ErrShortBuffer
	}
	buf[0] = TypePayload
	c := &cursor{buf: buf, size: size, pos: 1}
	p.BlockFlags = c.writeField(p.BlockFlags.Value, -1)
	p.Length = c.writeField(uint64(len(p.Data)), 4)

	if c.pos+len(p.Data) > size {
		return c.pos, c.flags | FlagIncomplete, ErrShortBuffer
	}
	copy(buf[c.pos:], p.Data)
	c.pos += len(p.Data)

	return c.pos, c.flags, nil
}
