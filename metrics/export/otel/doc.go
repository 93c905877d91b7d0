// Package otel exposes goSession metrics as OpenTelemetry observable
// instruments.
//
// Counters map to Int64ObservableCounter. The validate latency histogram is
// published as one cumulative gauge per bucket plus a count gauge, using the
// same names as the Prometheus exporter.
//
// # What this package must NOT do
//
//   - Install a global MeterProvider.
//   - Mutate engine state.
package otel
