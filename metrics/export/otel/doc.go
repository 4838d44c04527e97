// Package otel publishes goGate engine metrics as OpenTelemetry instruments.
//
// Engine counters are grouped by concern into a few observable counters
// told apart by one attribute: gogate.admission.decisions{outcome},
// gogate.session.operations{operation}, gogate.session.evictions{cause},
// gogate.authorize.grants{result} and gogate.rate.windows_swept{store}.
// Latency histograms become a cumulative bucket gauge keyed by le plus a
// count gauge. A single callback reads [goGate.Engine.MetricsSnapshot] on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
