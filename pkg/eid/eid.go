// Package eid parses and formats BPv6 endpoint identifiers of the form
// ipn:<node>.<service> (RFC 5050, the "ipn" URI scheme).
package eid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxEIDString bounds the textual length of an EID, matching the source's
// BP_MAX_EID_STRING guard.
const MaxEIDString = 128

var (
	// ErrTooShort is returned for strings shorter than the minimum valid
	// EID, "ipn:1.1" (7 bytes).
	ErrTooShort = errors.New("eid: string too short")
	// ErrBadScheme is returned when the string does not start with the
	// "ipn:" scheme prefix.
	ErrBadScheme = errors.New("eid: unrecognized scheme")
	// ErrBadGrammar is returned when the node/service pair is malformed
	// (missing dot, non-numeric component, trailing garbage).
	ErrBadGrammar = errors.New("eid: malformed node.service")
	// ErrZeroComponent is returned when node or service is zero.
	//
	// RFC 5050 does not forbid a zero service number, but the original
	// bplib_eid2ipn implementation rejects it; this package preserves
	// that behavior for wire compatibility (see Open Question in DESIGN.md).
	ErrZeroComponent = errors.New("eid: node and service must be >= 1")
)

// EID is a BPv6 endpoint identifier: a (node, service) pair.
type EID struct {
	Node    uint64
	Service uint64
}

// Parse decodes a textual "ipn:<node>.<service>" endpoint ID.
func Parse(s string) (EID, error) {
	if len(s) < len("ipn:1.1") {
		return EID{}, ErrTooShort
	}
	if len(s) > MaxEIDString {
		return EID{}, fmt.Errorf("%w: exceeds %d bytes", ErrBadGrammar, MaxEIDString)
	}
	if !strings.HasPrefix(s, "ipn:") {
		return EID{}, ErrBadScheme
	}

	rest := s[len("ipn:"):]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return EID{}, ErrBadGrammar
	}

	nodeStr, serviceStr := rest[:dot], rest[dot+1:]
	if nodeStr == "" || serviceStr == "" {
		return EID{}, ErrBadGrammar
	}

	node, err := strconv.ParseUint(nodeStr, 10, 64)
	if err != nil {
		return EID{}, fmt.Errorf("%w: %v", ErrBadGrammar, err)
	}
	service, err := strconv.ParseUint(serviceStr, 10, 64)
	if err != nil {
		return EID{}, fmt.Errorf("%w: %v", ErrBadGrammar, err)
	}

	if node == 0 || service == 0 {
		return EID{}, ErrZeroComponent
	}

	return EID{Node: node, Service: service}, nil
}

// String renders the canonical "ipn:<node>.<service>" form.
func (e EID) String() string {
	return fmt.Sprintf("ipn:%d.%d", e.Node, e.Service)
}

// IsZero reports whether e is the zero value (unset).
func (e EID) IsZero() bool {
	return e.Node == 0 && e.Service == 0
}
