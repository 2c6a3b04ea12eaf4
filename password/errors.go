package password

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHash reports an encoded string that is not a valid Argon2 hash.
	// It is never returned for a plain password mismatch.
	ErrMalformedHash = errors.New("password: malformed hash")
	// ErrRandomnessUnavailable reports that the salt could not be generated.
	ErrRandomnessUnavailable = errors.New("password: randomness unavailable")
	// ErrComputationFailed wraps a KDF failure encountered while verifying.
	ErrComputationFailed = errors.New("password: computation failed")
	// ErrCostLimit reports a stored hash whose cost exceeds the verifier's caps.
	// It is always wrapped together with ErrComputationFailed.
	ErrCostLimit = errors.New("password: hash cost exceeds verification limits")
)

// DecodeError describes which field of an encoded hash was rejected.
// It matches ErrMalformedHash with errors.Is.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("password: malformed hash: %s: %s", e.Field, e.Reason)
}

// Is reports true for ErrMalformedHash.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedHash
}

func malformed(field, reason string) error {
	return &DecodeError{Field: field, Reason: reason}
}
