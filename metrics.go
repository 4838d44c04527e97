package goGate

import (
	internalmetrics "github.com/MrEthical07/goGate/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricAdmissionAllowed          = internalmetrics.MetricAdmissionAllowed
	MetricRateLimited               = internalmetrics.MetricRateLimited
	MetricOriginRejected            = internalmetrics.MetricOriginRejected
	MetricRateBackendDegraded       = internalmetrics.MetricRateBackendDegraded
	MetricRateWindowsSwept          = internalmetrics.MetricRateWindowsSwept
	MetricSessionCreated            = internalmetrics.MetricSessionCreated
	MetricSessionValidated          = internalmetrics.MetricSessionValidated
	MetricSessionRejected           = internalmetrics.MetricSessionRejected
	MetricSessionPersistDue         = internalmetrics.MetricSessionPersistDue
	MetricSessionEvictedIdle        = internalmetrics.MetricSessionEvictedIdle
	MetricSessionEvictedExpired     = internalmetrics.MetricSessionEvictedExpired
	MetricSessionEvictedConcurrency = internalmetrics.MetricSessionEvictedConcurrency
	MetricSessionEvictedAccount     = internalmetrics.MetricSessionEvictedAccount
	MetricSessionReplaced           = internalmetrics.MetricSessionReplaced
	MetricLogout                    = internalmetrics.MetricLogout
	MetricLogoutAll                 = internalmetrics.MetricLogoutAll
	MetricAuthorize                 = internalmetrics.MetricAuthorize
	MetricAuthorizeLookupFailure    = internalmetrics.MetricAuthorizeLookupFailure
	MetricAuditDropped              = internalmetrics.MetricAuditDropped
	// MetricAdmitLatency and MetricValidateLatency are histograms.
	MetricAdmitLatency    = internalmetrics.MetricAdmitLatency
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// HistogramBucketCount is the number of buckets per latency histogram,
// +Inf included.
const HistogramBucketCount = internalmetrics.HistogramBucketCount

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
