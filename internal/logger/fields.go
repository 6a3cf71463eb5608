package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Channel & Operation
	// ========================================================================
	KeyChannel   = "channel"   // Channel name
	KeyOperation = "operation" // store, load, process, accept, flush, config
	KeyStatus    = "status"    // Operation status code
	KeyStatusMsg = "status_msg"

	// ========================================================================
	// Bundle Protocol domain
	// ========================================================================
	KeyCID          = "cid"           // Custody ID
	KeySID          = "sid"           // Storage ID
	KeySourceEID    = "source_eid"    // Bundle source endpoint
	KeyDestEID      = "dest_eid"      // Bundle destination endpoint
	KeyReportToEID  = "reportto_eid"  // Bundle report-to endpoint
	KeyCipherSuite  = "cipher_suite"  // BIB CRC selector
	KeyWrapResponse = "wrap_response" // active-table-full policy
	KeyLifetime     = "lifetime"      // bundle lifetime, seconds
	KeyTimeout      = "timeout"       // custody retransmit timeout, seconds
	KeyDisposition  = "disposition"   // parser disposition
	KeyRuns         = "runs"          // ACS runs encoded/decoded
	KeyGaps         = "gaps"          // ACS gaps encoded/decoded
	KeyOccupancy    = "occupancy"     // active-table occupied slot count

	// ========================================================================
	// Client Identification (cmd/bpd HTTP surface)
	// ========================================================================
	KeyClientIP = "client_ip"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeySource     = "source"      // Data source: memory, badger, s3

	// ========================================================================
	// Storage Backend
	// ========================================================================
	KeyStoreName  = "store_name"  // Named store identifier from registry
	KeyStoreType  = "store_type"  // Store type: memory, badger, s3
	KeyBucket     = "bucket"      // Cloud bucket name (S3)
	KeyKey        = "key"         // Object key in cloud storage
	KeyRegion     = "region"      // Cloud region
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeySessionID    = "session_id"
	KeyConnectionID = "connection_id"
	KeyRequestID    = "request_id"
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Channel returns a slog.Attr for channel name
func Channel(name string) slog.Attr {
	return slog.String(KeyChannel, name)
}

// Operation returns a slog.Attr for sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Status returns a slog.Attr for operation status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for human-readable status message
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// CID returns a slog.Attr for a custody ID
func CID(cid uint64) slog.Attr {
	return slog.Uint64(KeyCID, cid)
}

// SID returns a slog.Attr for a storage ID
func SID(sid uint64) slog.Attr {
	return slog.Uint64(KeySID, sid)
}

// SourceEID returns a slog.Attr for a bundle's source endpoint, rendered
// ipn:<node>.<service>.
func SourceEID(s string) slog.Attr {
	return slog.String(KeySourceEID, s)
}

// DestEID returns a slog.Attr for a bundle's destination endpoint.
func DestEID(s string) slog.Attr {
	return slog.String(KeyDestEID, s)
}

// ReportToEID returns a slog.Attr for a bundle's report-to endpoint.
func ReportToEID(s string) slog.Attr {
	return slog.String(KeyReportToEID, s)
}

// CipherSuite returns a slog.Attr for the BIB cipher suite selector.
func CipherSuite(suite int) slog.Attr {
	return slog.Int(KeyCipherSuite, suite)
}

// WrapResponse returns a slog.Attr for the active-table-full policy.
func WrapResponse(policy string) slog.Attr {
	return slog.String(KeyWrapResponse, policy)
}

// Lifetime returns a slog.Attr for a bundle's lifetime in seconds.
func Lifetime(secs uint64) slog.Attr {
	return slog.Uint64(KeyLifetime, secs)
}

// Timeout returns a slog.Attr for the custody retransmit timeout in seconds.
func Timeout(secs uint64) slog.Attr {
	return slog.Uint64(KeyTimeout, secs)
}

// Disposition returns a slog.Attr for a parser disposition.
func Disposition(d string) slog.Attr {
	return slog.String(KeyDisposition, d)
}

// Runs returns a slog.Attr for a count of ACS runs.
func Runs(n int) slog.Attr {
	return slog.Int(KeyRuns, n)
}

// Gaps returns a slog.Attr for a count of ACS gaps.
func Gaps(n int) slog.Attr {
	return slog.Int(KeyGaps, n)
}

// Occupancy returns a slog.Attr for the active table's occupied slot count.
func Occupancy(n int) slog.Attr {
	return slog.Int(KeyOccupancy, n)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Source returns a slog.Attr for data source
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// StoreName returns a slog.Attr for named store identifier
func StoreName(name string) slog.Attr {
	return slog.String(KeyStoreName, name)
}

// StoreType returns a slog.Attr for store type
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Bucket returns a slog.Attr for cloud bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for object key in cloud storage
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Region returns a slog.Attr for cloud region
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// SessionID returns a slog.Attr for session identifier
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ConnectionID returns a slog.Attr for connection identifier
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for protocol-specific request ID
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// RequestIDStr returns a slog.Attr for request ID as string
func RequestIDStr(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}
