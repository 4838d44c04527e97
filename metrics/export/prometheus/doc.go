// Package prometheus exposes goGate engine metrics through a
// client_golang [prometheus.Collector].
//
// [NewCollector] reads [goGate.Engine.MetricsSnapshot] on every scrape and
// emits const metrics, so the engine's hot path never touches the
// Prometheus client. Counters are named gogate_*_total; latency histograms
// are gogate_*_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global default registry. Callers pick the registry.
//   - Mutate engine state.
package prometheus
