package bundle

import (
	"github.com/dtn-stack/bplib/pkg/block"
	"github.com/dtn-stack/bplib/pkg/crc"
)

// maxHeaderSize bounds the primary+CTEB+BIB header portion of a template.
// Every field in that header is either a small fixed-width SDNV or a node
// number well under this bound; 256 bytes is generous headroom.
const maxHeaderSize = 256

// Builder composes primary ‖ (CTEB) ‖ (BIB) ‖ payload into a single
// contiguous bundle. The header portion (everything but the payload block)
// is cached as a template and reused across Build calls until the route or
// attributes change, at which point the next Build rebuilds it.
type Builder struct {
	route Route
	attrs Attributes

	headerTemplate []byte
	prebuilt       bool

	createSecField  block.Field
	createSeqField  block.Field
	hasCTEB         bool
	custodyIDField  block.Field
	payloadLenField block.Field
	bibResultOffset int // -1 if no BIB
	bibSuite        crc.Suite
}

// NewBuilder returns a Builder for route under attrs. The first Build call
// constructs the template.
func NewBuilder(route Route, attrs Attributes) *Builder {
	return &Builder{route: route, attrs: attrs, bibResultOffset: -1}
}

// SetRoute replaces the route and forces the template to rebuild on the
// next Build.
func (b *Builder) SetRoute(route Route) {
	b.route = route
	b.prebuilt = false
}

// SetAttributes replaces the attribute set and forces the template to
// rebuild on the next Build, matching the channel configuration invariant
// that any attribute change invalidates a prebuilt template.
func (b *Builder) SetAttributes(attrs Attributes) {
	b.attrs = attrs
	b.prebuilt = false
}

// Prebuilt reports whether the header template is current.
func (b *Builder) Prebuilt() bool { return b.prebuilt }

// HasCTEB reports whether the current template includes a CTEB, i.e.
// whether PatchCustodyID has anything to patch.
func (b *Builder) HasCTEB() bool { return b.hasCTEB }

// PatchCustodyID stamps cid into a built bundle's CTEB custody-id field,
// the send-time patch the channel façade applies once a CID has been
// assigned by the active table. data must have been produced by this
// Builder's Build while its template included a CTEB.
func (b *Builder) PatchCustodyID(data []byte, cid uint64) error {
	if !b.hasCTEB {
		return newError("patch-custody-id", 0, ErrNoCTEB)
	}
	if _, err := block.Patch(data, b.custodyIDField, cid); err != nil {
		return newError("patch-custody-id", b.custodyIDField.Offset, err)
	}
	return nil
}

func (b *Builder) ensureTemplate() error {
	if b.prebuilt {
		return nil
	}

	buf := make([]byte, maxHeaderSize)

	p := block.Primary{}
	p.DstNode.Value, p.DstService.Value = b.route.Destination.Node, b.route.Destination.Service
	p.SrcNode.Value, p.SrcService.Value = b.route.Source.Node, b.route.Source.Service
	p.RptNode.Value, p.RptService.Value = b.route.ReportTo.Node, b.route.ReportTo.Service
	p.CstNode.Value, p.CstService.Value = b.route.Source.Node, b.route.Source.Service
	p.Lifetime.Value = b.attrs.Lifetime
	p.IsAdminRecord = b.attrs.AdminRecord
	p.AllowFragmentation = b.attrs.AllowFragmentation
	p.CustodyRequested = b.attrs.RequestCustody

	n, flags, err := block.WritePrimary(buf, len(buf), &p)
	if err != nil {
		return newError("build", 0, err)
	}
	if flags&block.FlagIncomplete != 0 {
		return newError("build", n, block.ErrShortBuffer)
	}
	cursor := n

	b.hasCTEB = b.attrs.RequestCustody
	if b.attrs.RequestCustody {
		cteb := &block.CTEB{}
		cteb.CstNode.Value, cteb.CstService.Value = b.route.Source.Node, b.route.Source.Service
		m, _, err := block.WriteCTEB(buf[cursor:], len(buf)-cursor, cteb)
		if err != nil {
			return newError("build", cursor, err)
		}
		custodyIDField := cteb.CustodyID
		custodyIDField.Offset += cursor
		b.custodyIDField = custodyIDField
		cursor += m
	}

	bibResultOffset := -1
	if b.attrs.IntegrityCheck {
		bib := &block.BIB{}
		start := cursor
		m, _, err := block.WriteBIB(buf[cursor:], len(buf)-cursor, bib, b.attrs.CipherSuite)
		if err != nil {
			return newError("build", cursor, err)
		}
		cursor += m
		bibResultOffset = start + m - b.attrs.CipherSuite.Size()
	}

	b.headerTemplate = append([]byte(nil), buf[:cursor]...)
	b.createSecField = p.CreateSec
	b.createSeqField = p.CreateSeq
	b.payloadLenField = p.PayloadLength
	b.bibResultOffset = bibResultOffset
	b.bibSuite = b.attrs.CipherSuite
	b.prebuilt = true
	return nil
}

// Build assembles a full bundle for payload, stamping createSec/createSeq
// (the bundle's creation timestamp SDNV pair) into the cached header and
// appending a fresh payload block. It returns ErrTooLarge if the result
// would exceed attrs.MaxLength (when non-zero).
func (b *Builder) Build(payload []byte, createSec, createSeq uint64) ([]byte, error) {
	if err := b.ensureTemplate(); err != nil {
		return nil, err
	}

	out := make([]byte, len(b.headerTemplate)+len(payload)+16)
	copy(out, b.headerTemplate)

	if _, err := block.Patch(out, b.createSecField, createSec); err != nil {
		return nil, newError("build", b.createSecField.Offset, err)
	}
	if _, err := block.Patch(out, b.createSeqField, createSeq); err != nil {
		return nil, newError("build", b.createSeqField.Offset, err)
	}

	cursor := len(b.headerTemplate)
	pb := &block.Payload{Data: payload}
	m, flags, err := block.WritePayload(out[cursor:], len(out)-cursor, pb)
	if err != nil {
		return nil, newError("build", cursor, err)
	}
	if flags&block.FlagIncomplete != 0 {
		return nil, newError("build", cursor, block.ErrShortBuffer)
	}
	total := cursor + m

	if _, err := block.Patch(out, b.payloadLenField, uint64(len(payload))); err != nil {
		return nil, newError("build", b.payloadLenField.Offset, err)
	}

	if b.bibResultOffset >= 0 {
		sum := crc.Compute(b.bibSuite, payload)
		copy(out[b.bibResultOffset:b.bibResultOffset+len(sum)], sum)
	}

	out = out[:total]
	if b.attrs.MaxLength != 0 && uint64(len(out)) > b.attrs.MaxLength {
		return nil, newError("build", total, ErrTooLarge)
	}
	return out, nil
}
