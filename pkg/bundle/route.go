package bundle

import "github.com/dtn-stack/bplib/pkg/eid"

// Route is the three endpoint IDs a bundle's primary block carries: the
// sending node, the destination, and the node reports (status, not custody)
// are sent to. The current-custodian field is derived from Source at build
// time; it only changes hands through custody transfer, which this package
// does not mutate after the fact.
type Route struct {
	Source      eid.EID
	Destination eid.EID
	ReportTo    eid.EID
}
