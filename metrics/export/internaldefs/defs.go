package internaldefs

import (
	credkit "github.com/credkit/credkit"
)

// CounterDef defines a public type used by credkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by credkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the credential manager.
var CounterDefs = []CounterDef{
	{ID: credkit.MetricPasswordHashed, Name: "credkit_password_hashed_total", Help: "Successful password hash operations."},
	{ID: credkit.MetricPasswordHashFailed, Name: "credkit_password_hash_failed_total", Help: "Password hash operations rejected for encoding."},
	{ID: credkit.MetricPasswordVerifyOK, Name: "credkit_password_verify_ok_total", Help: "Successful password verifications."},
	{ID: credkit.MetricPasswordVerifyFailed, Name: "credkit_password_verify_failed_total", Help: "Failed or malformed password verifications."},
	{ID: credkit.MetricTokenIssued, Name: "credkit_token_issued_total", Help: "Issued session tokens."},
	{ID: credkit.MetricTokenIssueFailed, Name: "credkit_token_issue_failed_total", Help: "Failed token issuance operations."},
	{ID: credkit.MetricTokenAccepted, Name: "credkit_token_accepted_total", Help: "Tokens that passed signature and expiry validation."},
	{ID: credkit.MetricTokenRejected, Name: "credkit_token_rejected_total", Help: "Tokens rejected as expired or invalid."},
}

// VerifyLatencyDef is the single histogram this library records: latency of
// the token verification hot path.
var VerifyLatencyDef = HistogramDef{ID: credkit.MetricVerifyLatency, Name: "credkit_token_verify_latency_seconds", Help: "Token verification latency histogram."}

// HistogramDefs is an exported constant or variable used by the credential manager.
var HistogramDefs = []HistogramDef{VerifyLatencyDef}

// HistogramBounds is an exported constant or variable used by the credential manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the credential manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
