// Package password implements password hashing and verification on top of the
// argon2 package, with argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Salt and hash are unpadded standard base64. [Decode] accepts only the canonical
// form that [Encode] writes, so every tuple has exactly one encoding.
//
// The [Argon2] hasher supports transparent parameter upgrades: if the stored hash was
// produced with weaker parameters, [Argon2.NeedsUpgrade] returns true so the caller
// can re-hash on the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing, verification and the string codec. Admission control,
// metrics and audit live in the root package.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other goHash package except argon2.
//   - Log plaintext passwords, salts or derived output.
package password
