// Package internaldefs holds the metric names, help strings and histogram
// bounds shared by the exporters. Prometheus uses the flat counter names;
// OpenTelemetry groups the same counters under attributes but shares the
// bucket bounds and bucket arithmetic.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
