package block

// Primary is the BPv6 primary bundle block. Addresses are carried as raw
// ipn node/service numbers (compressed bundle header encoding) rather than
// through the dictionary byte-string scheme; Dict is always zero-length.
type Primary struct {
	Version byte

	PCF         Field // processing control flags, packed bits decoded below
	BlockLength Field

	DstNode, DstService Field
	SrcNode, SrcService Field
	RptNode, RptService Field
	CstNode, CstService Field

	CreateSec, CreateSeq Field
	Lifetime             Field
	DictLength           Field
	FragOffset           Field
	PayloadLength        Field

	IsAdminRecord      bool
	IsFragment         bool
	AllowFragmentation bool
	CustodyRequested   bool
	AckByApp           bool
	COS                uint8
}

// Processing control flags bit layout. This is an internal wire
// convention; no external BPv6 stack needs to recognize it.
const (
	pcfIsFragment = 1 << iota
	pcfIsAdmin
	pcfAllowFrag
	pcfCustodyRequested
	pcfAckByApp
	pcfCOSShift = 5
	pcfCOSMask  = 0x3 << pcfCOSShift
)

func packPCF(p *Primary) uint64 {
	var v uint64
	if p.IsFragment {
		v |= pcfIsFragment
	}
	if p.IsAdminRecord {
		v |= pcfIsAdmin
	}
	if p.AllowFragmentation {
		v |= pcfAllowFrag
	}
	if p.CustodyRequested {
		v |= pcfCustodyRequested
	}
	if p.AckByApp {
		v |= pcfAckByApp
	}
	v |= uint64(p.COS&0x3) << pcfCOSShift
	return v
}

func unpackPCF(p *Primary, v uint64) {
	p.IsFragment = v&pcfIsFragment != 0
	p.IsAdminRecord = v&pcfIsAdmin != 0
	p.AllowFragmentation = v&pcfAllowFrag != 0
	p.CustodyRequested = v&pcfCustodyRequested != 0
	p.AckByApp = v&pcfAckByApp != 0
	p.COS = uint8((v & pcfCOSMask) >> pcfCOSShift)
}

// ReadPrimary parses a primary block from buf[:size], starting at offset 0.
// It returns the number of bytes consumed.
func ReadPrimary(buf []byte, size int, p *Primary) (int, Flags, error) {
	if size < 1 {
		return 0, 0, ErrShortBuffer
	}
	p.Version = buf[0]
	if p.Version != 6 {
		return 0, 0, ErrBadVersion
	}

	c := &cursor{buf: buf, size: size, pos: 1}
	p.PCF = c.readField(-1)
	unpackPCF(p, p.PCF.Value)
	p.BlockLength = c.readField(-1)
	p.DstNode = c.readField(-1)
	p.DstService = c.readField(-1)
	p.SrcNode = c.readField(-1)
	p.SrcService = c.readField(-1)
	p.RptNode = c.readField(-1)
	p.RptService = c.readField(-1)
	p.CstNode = c.readField(-1)
	p.CstService = c.readField(-1)
	p.CreateSec = c.readField(8)
	p.CreateSeq = c.readField(4)
	p.Lifetime = c.readField(-1)
	p.DictLength = c.readField(-1)
	p.FragOffset = c.readField(-1)
	p.PayloadLength = c.readField(4)

	return c.pos, c.flags, nil
}

// WritePrimary emits buf[:size] starting at offset 0. Creation time, CID
// (elsewhere, in the CTEB), and payload length are written with fixed
// widths so a template built from this call can be patched later via
// Patch without disturbing the rest of the layout.
func WritePrimary(buf []byte, size int, p *Primary) (int, Flags, error) {
	if size < 1 {
		return 0, 0, ErrShortBuffer
	}
	buf[0] = 6
	p.Version = 6

	c := &cursor{buf: buf, size: size, pos: 1}
	p.PCF = c.writeField(packPCF(p), -1)
	p.BlockLength = c.writeField(p.BlockLength.Value, -1)
	p.DstNode = c.writeField(p.DstNode.Value, -1)
	p.DstService = c.writeField(p.DstService.Value, -1)
	p.SrcNode = c.writeField(p.SrcNode.Value, -1)
	p.SrcService = c.writeField(p.SrcService.Value, -1)
	p.RptNode = c.writeField(p.RptNode.Value, -1)
	p.RptService = c.writeField(p.RptService.Value, -1)
	p.CstNode = c.writeField(p.CstNode.Value, -1)
	p.CstService = c.writeField(p.CstService.Value, -1)
	p.CreateSec = c.writeField(p.CreateSec.Value, 8)
	p.CreateSeq = c.writeField(p.CreateSeq.Value, 4)
	p.Lifetime = c.writeField(p.Lifetime.Value, -1)
	p.DictLength = c.writeField(0, -1)
	p.FragOffset = c.writeField(p.FragOffset.Value, -1)
	p.PayloadLength = c.writeField(p.PayloadLength.Value, 4)

	return c.pos, c.flags, nil
}
