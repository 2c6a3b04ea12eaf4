// Package otel binds Engine metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per Engine counter, an
// Int64ObservableGauge per histogram bucket and one for admitted memory. A single
// callback reads [goHash.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
