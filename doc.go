// Package goHash provides a password hashing engine built on Argon2id with PHC
// string encoding, memory-weighted admission control, metrics and audit events.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goHash is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (MetricsSnapshot, AuditEvent). The KDF lives in the argon2 package and the string codec in
// the password package; both are usable on their own. Admission control lives under
// internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Log, audit or trace plaintext passwords, salts or derived output.
//   - Expose Redis clients or admission internals in its public API.
//   - Import any sub-package that re-imports goHash (no import cycles).
//
// # Resource contract
//
// Every Hash and Verify call reserves its memory cost from the admission budget before
// the KDF allocates its arena and returns the reservation on every exit path. Malformed
// hashes are rejected before any reservation is made.
//
// # Tracing
//
// Hash and Verify each record one OpenTelemetry span from the provider given to
// [Builder.WithTracerProvider], or the global provider otherwise.
package goHash
