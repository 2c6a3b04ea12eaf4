// Package prometheus renders Engine metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] accepts a [goHash.Engine] and exposes an [http.Handler].
// Counter names are prefixed gohash_*_total; latency histograms are
// gohash_hash_latency_seconds and gohash_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
