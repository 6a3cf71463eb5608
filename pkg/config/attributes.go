package config

import (
	"fmt"

	"github.com/dtn-stack/bplib/pkg/bundle"
	"github.com/dtn-stack/bplib/pkg/crc"
	"github.com/dtn-stack/bplib/pkg/eid"
)

// Build resolves a ChannelConfig's textual endpoint IDs and enum strings
// into the bundle.Route/bundle.Attributes pair Open needs. Call it only
// after Validate has confirmed the fields parse.
func (c ChannelConfig) Build() (bundle.Route, bundle.Attributes, error) {
	source, err := eid.Parse(c.Source)
	if err != nil {
		return bundle.Route{}, bundle.Attributes{}, fmt.Errorf("source: %w", err)
	}
	destination, err := eid.Parse(c.Destination)
	if err != nil {
		return bundle.Route{}, bundle.Attributes{}, fmt.Errorf("destination: %w", err)
	}
	reportTo := source
	if c.ReportTo != "" {
		reportTo, err = eid.Parse(c.ReportTo)
		if err != nil {
			return bundle.Route{}, bundle.Attributes{}, fmt.Errorf("report_to: %w", err)
		}
	}
	route := bundle.Route{Source: source, Destination: destination, ReportTo: reportTo}

	attrs, err := c.Attributes.build()
	if err != nil {
		return bundle.Route{}, bundle.Attributes{}, err
	}
	return route, attrs, nil
}

func (a AttributesConfig) build() (bundle.Attributes, error) {
	suite, err := parseCipherSuite(a.CipherSuite)
	if err != nil {
		return bundle.Attributes{}, err
	}

	wrap, ok := bundle.ParseWrapResponse(a.WrapResponse)
	if a.WrapResponse != "" && !ok {
		return bundle.Attributes{}, fmt.Errorf("wrap_response: unrecognized value %q", a.WrapResponse)
	}

	return bundle.Attributes{
		Lifetime:           a.Lifetime,
		RequestCustody:     a.RequestCustody,
		AdminRecord:        a.AdminRecord,
		IntegrityCheck:     a.IntegrityCheck,
		AllowFragmentation: a.AllowFragmentation,
		CipherSuite:        suite,
		Timeout:            a.Timeout,
		MaxLength:          a.MaxLength.Uint64(),
		WrapResponse:       wrap,
		CIDReuse:           a.CIDReuse,
		DACSRate:           a.DACSRate,
		ActiveTableSize:    a.ActiveTableSize,
		MaxFillsPerDACS:    a.MaxFillsPerDACS,
		MaxGapsPerDACS:     a.MaxGapsPerDACS,
		StorageServiceParm: a.StorageServiceParm,
	}, nil
}

func parseCipherSuite(s string) (crc.Suite, error) {
	switch s {
	case "", "NONE":
		return crc.SuiteNone, nil
	case "CRC16X25":
		return crc.SuiteCRC16X25, nil
	case "CRC32C":
		return crc.SuiteCRC32Castagnoli, nil
	default:
		return crc.SuiteNone, fmt.Errorf("cipher_suite: unrecognized value %q", s)
	}
}
