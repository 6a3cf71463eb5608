package bundle

import "github.com/dtn-stack/bplib/pkg/crc"

// WrapResponse selects the active-table-full policy a channel applies when
// load's scan reaches current_cid with no vacant slot to dequeue into.
type WrapResponse int

const (
	// WrapResend retransmits the oldest still-outstanding bundle instead of
	// accepting a new one.
	WrapResend WrapResponse = iota
	// WrapBlock reports OVERFLOW and waits briefly on the active-table
	// condition variable before the caller retries.
	WrapBlock
	// WrapDrop relinquishes the oldest outstanding bundle to make room.
	WrapDrop
)

func (w WrapResponse) String() string {
	switch w {
	case WrapResend:
		return "RESEND"
	case WrapBlock:
		return "BLOCK"
	case WrapDrop:
		return "DROP"
	default:
		return "UNKNOWN"
	}
}

// ParseWrapResponse maps a config string to a WrapResponse.
func ParseWrapResponse(s string) (WrapResponse, bool) {
	switch s {
	case "RESEND":
		return WrapResend, true
	case "BLOCK":
		return WrapBlock, true
	case "DROP":
		return WrapDrop, true
	default:
		return 0, false
	}
}

// Attributes is a channel's full configuration set. store/load/process
// consult the subset that shapes bundle construction (Lifetime through
// CipherSuite, MaxLength); the active table and custody engine consult the
// rest. All of it is reachable through one attribute set so config's
// get/set surface can address every option uniformly.
type Attributes struct {
	Lifetime           uint64 // seconds; 0 = infinite
	RequestCustody     bool
	AdminRecord        bool
	IntegrityCheck     bool
	AllowFragmentation bool
	CipherSuite        crc.Suite

	Timeout   uint64 // seconds; 0 = never
	MaxLength uint64 // bytes

	WrapResponse WrapResponse
	CIDReuse     bool

	DACSRate        uint64 // seconds
	ActiveTableSize int
	MaxFillsPerDACS int
	MaxGapsPerDACS  int

	StorageServiceParm string
}

// DefaultAttributes returns a reasonable starting configuration: no custody,
// no integrity check, 3600s lifetime, a 256-slot active table.
func DefaultAttributes() Attributes {
	return Attributes{
		Lifetime:        3600,
		CipherSuite:     crc.SuiteNone,
		Timeout:         30,
		MaxLength:       65536,
		WrapResponse:    WrapResend,
		DACSRate:        5,
		ActiveTableSize: 256,
		MaxFillsPerDACS: 64,
		MaxGapsPerDACS:  64,
	}
}
