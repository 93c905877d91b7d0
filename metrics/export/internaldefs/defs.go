package internaldefs

import (
	"strconv"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Sessions issued."},
	{ID: goSession.MetricSessionCreateRejected, Name: "gosession_session_create_rejected_total", Help: "Session creations rejected for invalid identity or signing failure."},
	{ID: goSession.MetricSessionValidated, Name: "gosession_session_validated_total", Help: "Session lookups that returned a payload."},
	{ID: goSession.MetricSessionAbsent, Name: "gosession_session_absent_total", Help: "Session lookups without a session cookie."},
	{ID: goSession.MetricSessionInvalid, Name: "gosession_session_invalid_total", Help: "Malformed, forged or mis-claimed session tokens."},
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Correctly signed session tokens past expiry."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Session tokens rejected by the revocation store."},
	{ID: goSession.MetricSessionDeleted, Name: "gosession_session_deleted_total", Help: "Session deletions."},
	{ID: goSession.MetricUserSessionsRevoked, Name: "gosession_user_sessions_revoked_total", Help: "Revoke-all operations for a user."},
	{ID: goSession.MetricRevocationBackendError, Name: "gosession_revocation_backend_error_total", Help: "Revocation store failures."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricValidateLatency, Name: "gosession_validate_latency_seconds", Help: "Session lookup latency."},
}

// AuditDroppedName is the counter for events lost to dispatcher backpressure.
const AuditDroppedName = "gosession_audit_dropped_total"

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = len(goSession.HistogramBounds) + 1

// UpperBounds returns the finite bucket bounds in seconds.
func UpperBounds() []float64 {
	out := make([]float64, len(goSession.HistogramBounds))
	for i, d := range goSession.HistogramBounds {
		out[i] = d.Seconds()
	}
	return out
}

// BoundSuffixes returns instrument-safe names for every bucket, e.g.
// "0_00025" and "inf".
func BoundSuffixes() []string {
	out := make([]string, 0, BucketCount)
	for _, b := range UpperBounds() {
		s := strconv.FormatFloat(b, 'f', -1, 64)
		out = append(out, strings.ReplaceAll(s, ".", "_"))
	}
	return append(out, "inf")
}

// NormalizeBuckets pads or truncates raw to BucketCount entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
