package internaldefs

import (
	goHash "github.com/MrEthical07/goHash"
)

// CounterDef binds an Engine counter to its exported name.
type CounterDef struct {
	ID   goHash.MetricID
	Name string
	Help string
}

// HistogramDef binds an Engine latency histogram to its exported name.
type HistogramDef struct {
	ID   goHash.MetricID
	Name string
	Help string
}

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = 8

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goHash.MetricHashSuccess, Name: "gohash_hash_success_total", Help: "Hashes produced."},
	{ID: goHash.MetricHashFailure, Name: "gohash_hash_failure_total", Help: "Hash calls that returned an error."},
	{ID: goHash.MetricVerifyMatch, Name: "gohash_verify_match_total", Help: "Verifications where the password matched."},
	{ID: goHash.MetricVerifyMismatch, Name: "gohash_verify_mismatch_total", Help: "Verifications where the password did not match."},
	{ID: goHash.MetricVerifyMalformed, Name: "gohash_verify_malformed_total", Help: "Stored hashes rejected as malformed."},
	{ID: goHash.MetricVerifyFailure, Name: "gohash_verify_failure_total", Help: "Verifications that failed for other reasons."},
	{ID: goHash.MetricAdmissionRejected, Name: "gohash_admission_rejected_total", Help: "Calls refused by the memory admission budget."},
	{ID: goHash.MetricUpgradeNeeded, Name: "gohash_upgrade_needed_total", Help: "Stored hashes reported as needing a parameter upgrade."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: goHash.MetricHashLatency, Name: "gohash_hash_latency_seconds", Help: "Hash latency histogram."},
	{ID: goHash.MetricVerifyLatency, Name: "gohash_verify_latency_seconds", Help: "Verify latency histogram."},
}

// AdmittedMemoryName is the gauge of KiB reserved by in-flight calls.
const AdmittedMemoryName = "gohash_admission_inflight_kib"

// AdmittedMemoryHelp describes AdmittedMemoryName.
const AdmittedMemoryHelp = "Memory in KiB reserved by in-flight KDF calls on this process."

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "gohash_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the upper bounds, in seconds, of the Engine latency buckets.
var HistogramBounds = [BucketCount]string{
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds in instrument-name-safe form.
var HistogramBoundSuffix = [BucketCount]string{
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := range raw {
		running += raw[i]
		out[i] = running
	}
	return out
}
