package bundle

import (
	"github.com/dtn-stack/bplib/pkg/block"
	"github.com/dtn-stack/bplib/pkg/crc"
	"github.com/dtn-stack/bplib/pkg/eid"
	"github.com/dtn-stack/bplib/pkg/sdnv"
)

// Disposition is the discriminator Parse returns alongside a successfully
// walked bundle, telling the caller what to do with it next.
type Disposition int

const (
	// DispositionSuccess means the bundle is an ordinary payload-bearing
	// bundle; enqueue Parsed.Payload for the application.
	DispositionSuccess Disposition = iota
	// DispositionExpired means the bundle's lifetime has elapsed as of the
	// sysnow supplied to Parse.
	DispositionExpired
	// DispositionPendingCustodyTransfer means the bundle requested custody
	// and carries a payload; the caller must feed Parsed.Custodian to the
	// custody engine.
	DispositionPendingCustodyTransfer
	// DispositionPendingAcknowledgment means the bundle is an admin record
	// carrying an ACS; the caller must feed Parsed.Payload to the ACS
	// reader.
	DispositionPendingAcknowledgment
)

// acsRecordType is the admin-record type byte identifying an ACS payload.
const acsRecordType = 0x40

// Custodian names the peer that asked this bundle to be custody-tracked,
// and the custody ID it filed the bundle under.
type Custodian struct {
	Node, Service uint64
	CID           uint64
}

// Parsed is the result of walking one bundle's blocks.
type Parsed struct {
	Route     Route
	Payload   []byte
	Custodian *Custodian
	HasBIB    bool
	BIBOK     bool
}

// Parse walks buf[:size] as a BPv6 bundle. It rejects a bad primary version
// or a BIB whose security result does not verify; it reports lifetime
// expiry through DispositionExpired rather than an error, matching the
// other three non-error dispositions.
func Parse(buf []byte, size int, sysnow uint64) (*Parsed, Disposition, error) {
	p := &block.Primary{}
	n, _, err := block.ReadPrimary(buf, size, p)
	if err != nil {
		return nil, 0, newError("parse", 0, err)
	}

	if p.Lifetime.Value != 0 && sysnow >= p.CreateSec.Value+p.Lifetime.Value {
		return nil, DispositionExpired, nil
	}

	result := &Parsed{
		Route: Route{
			Source:      eid.EID{Node: p.SrcNode.Value, Service: p.SrcService.Value},
			Destination: eid.EID{Node: p.DstNode.Value, Service: p.DstService.Value},
			ReportTo:    eid.EID{Node: p.RptNode.Value, Service: p.RptService.Value},
		},
	}

	var bib *block.BIB
	cursor := n
	for cursor < size {
		t := buf[cursor]
		switch t {
		case block.TypeCTEB:
			c := &block.CTEB{}
			m, _ := block.ReadCTEB(buf[cursor+1:], size-cursor-1, c)
			result.Custodian = &Custodian{Node: c.CstNode.Value, Service: c.CstService.Value, CID: c.CustodyID.Value}
			cursor += 1 + m
		case block.TypeBIB:
			b := &block.BIB{}
			m, _ := block.ReadBIB(buf[cursor+1:], size-cursor-1, b)
			bib = b
			cursor += 1 + m
		case block.TypePayload:
			pl := &block.Payload{}
			m, _ := block.ReadPayload(buf[cursor+1:], size-cursor-1, pl)
			result.Payload = pl.Data
			cursor += 1 + m
		default:
			m, err := skipUnknownBlock(buf[cursor+1:], size-cursor-1)
			if err != nil {
				return nil, 0, newError("parse", cursor, err)
			}
			cursor += 1 + m
		}
	}

	if bib != nil {
		result.HasBIB = true
		suite := crc.Suite(bib.CipherSuite.Value)
		result.BIBOK = bib.Verify(suite, result.Payload)
		if !result.BIBOK {
			return nil, 0, newError("parse", cursor, ErrBIBCheckFailed)
		}
	}

	if p.IsAdminRecord && len(result.Payload) > 0 && result.Payload[0] == acsRecordType {
		return result, DispositionPendingAcknowledgment, nil
	}
	if result.Custodian != nil && !p.IsAdminRecord {
		return result, DispositionPendingCustodyTransfer, nil
	}
	return result, DispositionSuccess, nil
}

// skipUnknownBlock advances past a block this package does not otherwise
// recognize, using only its processing-flags and length SDNVs.
func skipUnknownBlock(buf []byte, size int) (int, error) {
	flagsRec := sdnv.Record{Index: 0, Width: -1}
	n, _ := sdnv.Read(buf, size, &flagsRec)

	lenRec := sdnv.Record{Index: n, Width: -1}
	m, _ := sdnv.Read(buf, size, &lenRec)

	pos := n + m
	bodyLen := int(lenRec.Value)
	if pos+bodyLen > size {
		return pos, ErrTruncated
	}
	return pos + bodyLen, nil
}
