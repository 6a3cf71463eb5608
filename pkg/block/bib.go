package block

import "github.com/dtn-stack/bplib/pkg/crc"

// BIB is the Bundle Integrity Block: a cipher-suite selector and a
// security-result byte string, here always a CRC over the payload block.
type BIB struct {
	BlockFlags      Field
	BlockLength     Field
	CipherSuite     Field
	ResultLength    Field
	SecurityResult  []byte
}

// ReadBIB parses a BIB whose type byte has already been consumed; buf[:size]
// starts at the processing flags. SecurityResult aliases the backing
// buffer.
func ReadBIB(buf []byte, size int, b *BIB) (int, Flags) {
	c := &cursor{buf: buf, size: size, pos: 0}
	b.BlockFlags = c.readField(-1)
	b.BlockLength = c.readField(-1)
	b.CipherSuite = c.readField(-1)
	b.ResultLength = c.readField(-1)

	n := int(b.ResultLength.Value)
	if c.pos+n > size {
		c.flags |= FlagIncomplete
		n = size - c.pos
	}
	b.SecurityResult = buf[c.pos : c.pos+n]
	c.pos += n
	return c.pos, c.flags
}

// WriteBIB emits the type byte, header fields, and a zero-filled
// security-result placeholder of the width crc.Suite(suite).Size(); the
// caller patches in the real checksum at send time once the payload bytes
// are known.
func WriteBIB(buf []byte, size int, b *BIB, suite crc.Suite) (int, Flags, error) {
	if size < 1 {
		return 0, 0, ErrShortBuffer
	}
	buf[0] = TypeBIB
	c := &cursor{buf: buf, size: size, pos: 1}
	b.BlockFlags = c.writeField(b.BlockFlags.Value, -1)
	b.BlockLength = c.writeField(b.BlockLength.Value, -1)
	b.CipherSuite = c.writeField(uint64(suite), -1)

	resultLen := suite.Size()
	b.ResultLength = c.writeField(uint64(resultLen), -1)

	if c.pos+resultLen > size {
		return c.pos, c.flags | FlagIncomplete, ErrShortBuffer
	}
	b.SecurityResult = buf[c.pos : c.pos+resultLen]
	for i := range b.SecurityResult {
		b.SecurityResult[i] = 0
	}
	c.pos += resultLen

	return c.pos, c.flags, nil
}

// PatchSecurityResult overwrites the security-result bytes in place with
// the checksum computed over payload.
func PatchSecurityResult(b *BIB, suite crc.Suite, payload []byte) {
	copy(b.SecurityResult, crc.Compute(suite, payload))
}

// Verify recomputes the checksum over payload and compares it to the
// security result carried in b.
func (b *BIB) Verify(suite crc.Suite, payload []byte) bool {
	return crc.Verify(suite, payload, b.SecurityResult)
}
