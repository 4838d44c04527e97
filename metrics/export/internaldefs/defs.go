package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricAdmissionAllowed, Name: "gogate_admission_allowed_total", Help: "Requests that passed admission."},
	{ID: goGate.MetricRateLimited, Name: "gogate_rate_limited_total", Help: "Requests rejected by the rate limiter."},
	{ID: goGate.MetricOriginRejected, Name: "gogate_origin_rejected_total", Help: "State-changing requests rejected for a foreign origin."},
	{ID: goGate.MetricRateBackendDegraded, Name: "gogate_rate_backend_degraded_total", Help: "Requests admitted uncounted because the rate backend failed."},
	{ID: goGate.MetricRateWindowsSwept, Name: "gogate_rate_windows_swept_total", Help: "Idle in-memory client windows removed by the sweeper."},
	{ID: goGate.MetricSessionCreated, Name: "gogate_session_created_total", Help: "Registered sessions."},
	{ID: goGate.MetricSessionValidated, Name: "gogate_session_validated_total", Help: "Successful session validations."},
	{ID: goGate.MetricSessionRejected, Name: "gogate_session_rejected_total", Help: "Failed session validations."},
	{ID: goGate.MetricSessionPersistDue, Name: "gogate_session_persist_due_total", Help: "Validations that asked the caller to persist activity."},
	{ID: goGate.MetricSessionEvictedIdle, Name: "gogate_session_evicted_idle_total", Help: "Sessions evicted after the inactivity timeout."},
	{ID: goGate.MetricSessionEvictedExpired, Name: "gogate_session_evicted_expired_total", Help: "Sessions evicted at their absolute lifetime."},
	{ID: goGate.MetricSessionEvictedConcurrency, Name: "gogate_session_evicted_concurrency_total", Help: "Sessions evicted by the per-account cap."},
	{ID: goGate.MetricSessionEvictedAccount, Name: "gogate_session_evicted_account_total", Help: "Sessions removed by account-wide invalidation."},
	{ID: goGate.MetricSessionReplaced, Name: "gogate_session_replaced_total", Help: "Sessions replaced by re-registration under the same id."},
	{ID: goGate.MetricLogout, Name: "gogate_logout_total", Help: "Single-session logouts."},
	{ID: goGate.MetricLogoutAll, Name: "gogate_logout_all_total", Help: "Account-wide logouts."},
	{ID: goGate.MetricAuthorize, Name: "gogate_authorize_total", Help: "Grant computations."},
	{ID: goGate.MetricAuthorizeLookupFailure, Name: "gogate_authorize_lookup_failure_total", Help: "Account lookups that fell back to the guest grant."},
}

// HistogramDefs lists the latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricAdmitLatency, Name: "gogate_admit_latency_seconds", Help: "Admission check latency."},
	{ID: goGate.MetricValidateLatency, Name: "gogate_validate_latency_seconds", Help: "Session validation latency."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const (
	AuditDroppedName = "gogate_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// HistogramBounds are the finite upper bounds in seconds. The last engine
// bucket is +Inf.
var HistogramBounds = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [goGate.HistogramBucketCount]uint64 {
	var out [goGate.HistogramBucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [goGate.HistogramBucketCount]uint64) [goGate.HistogramBucketCount]uint64 {
	var out [goGate.HistogramBucketCount]uint64
	var running uint64
	for i := range raw {
		running += raw[i]
		out[i] = running
	}
	return out
}
