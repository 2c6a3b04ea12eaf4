// Package argon2 implements the Argon2 memory-hard key derivation function
// (RFC 9106) for all three variants and both published versions.
//
// # Memory layout
//
// Each derivation owns a single contiguous arena of 1 KiB blocks, split into
// Parallelism lanes of four segments each. Lanes of the same segment are filled
// concurrently; the arena is cleared before Derive returns.
//
// # What this package must NOT do
//
//   - Encode or parse hash strings (see package password).
//   - Generate salts or read any other source of randomness.
//   - Silently weaken parameters: out-of-range settings fail with
//     ErrInvalidParameters and oversize arenas with ErrAllocationFailure.
package argon2
