package custody

import "errors"

var (
	// ErrEmptyAccumulator is returned by Write when there is nothing to
	// acknowledge yet.
	ErrEmptyAccumulator = errors.New("custody: accumulator is empty")
	// ErrShortRecord is returned by Read when rec is too small to hold a
	// record type and status byte.
	ErrShortRecord = errors.New("custody: record too short")
	// ErrNotACS is returned by Read when the record type byte is not the
	// ACS record type.
	ErrNotACS = errors.New("custody: not an ACS record")
	// ErrMalformed is returned by Read when an SDNV fill fails to decode
	// cleanly.
	ErrMalformed = errors.New("custody: malformed fill")
	// ErrShortBuffer is returned by Write when buf cannot hold even the
	// record header.
	ErrShortBuffer = errors.New("custody: buffer too short")
)
