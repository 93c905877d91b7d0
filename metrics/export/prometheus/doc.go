// Package prometheus exposes goSession metrics through client_golang.
//
// [PrometheusExporter] is a collector that turns each engine
// [goSession.MetricsSnapshot] into const metrics at scrape time. Counters are
// named gosession_*_total; the one histogram is
// gosession_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register on the global Prometheus registry. Callers mount Handler or
//     register the collector themselves.
//   - Mutate engine state.
package prometheus
