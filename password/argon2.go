package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/MrEthical07/goHash/argon2"
)

const (
	// DefaultMemory is the baseline memory cost in KiB.
	DefaultMemory uint32 = 19456
	// DefaultTime is the baseline number of passes.
	DefaultTime uint32 = 2
	// DefaultParallelism is the baseline lane count.
	DefaultParallelism uint32 = 1
	// DefaultSaltLength is the number of random salt bytes per hash.
	DefaultSaltLength uint32 = 16
	// DefaultKeyLength is the derived output length in bytes.
	DefaultKeyLength uint32 = 32

	// DefaultMaxMemory bounds the memory cost accepted during verification (1 GiB).
	DefaultMaxMemory uint32 = 1 << 20
	// DefaultMaxTime bounds the number of passes accepted during verification.
	DefaultMaxTime uint32 = 32
	// DefaultMaxParallelism bounds the lane count accepted during verification.
	DefaultMaxParallelism uint32 = 64
)

// Config defines the parameters a hasher produces new hashes with.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Variant     argon2.Variant
	Version     argon2.Version
	Memory      uint32
	Time        uint32
	Parallelism uint32
	SaltLength  uint32
	KeyLength   uint32

	// MaxMemory caps the memory cost accepted from encoded hashes during
	// verification, in KiB. Zero leaves only argon2.MemoryCeiling in force.
	MaxMemory uint32
	// MaxTime and MaxParallelism cap the pass and lane counts accepted from
	// encoded hashes during verification. Zero disables the cap.
	MaxTime        uint32
	MaxParallelism uint32

	// Random supplies salt bytes. Nil selects crypto/rand.Reader.
	Random io.Reader
}

// DefaultConfig returns the argon2id baseline (m=19456, t=2, p=1, 16-byte salt,
// 32-byte output) shared by common Argon2 libraries, with bounded verification
// costs.
func DefaultConfig() Config {
	return Config{
		Variant:        argon2.Argon2id,
		Version:        argon2.Version13,
		Memory:         DefaultMemory,
		Time:           DefaultTime,
		Parallelism:    DefaultParallelism,
		SaltLength:     DefaultSaltLength,
		KeyLength:      DefaultKeyLength,
		MaxMemory:      DefaultMaxMemory,
		MaxTime:        DefaultMaxTime,
		MaxParallelism: DefaultMaxParallelism,
	}
}

// Params returns the KDF cost parameters described by cfg.
func (cfg Config) Params() argon2.Params {
	return argon2.Params{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		KeyLength:   cfg.KeyLength,
	}
}

// Argon2 hashes and verifies passwords.
//
// Argon2 instances are immutable after construction and safe for concurrent use
// provided the configured Random reader is.
type Argon2 struct {
	config Config
	random io.Reader
}

// NewArgon2 validates cfg and returns a hasher. Invalid cost settings return an
// error wrapping argon2.ErrInvalidParameters.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	random := cfg.Random
	if random == nil {
		random = rand.Reader
	}

	return &Argon2{config: cfg, random: random}, nil
}

// Config returns the configuration the hasher was built with.
func (a *Argon2) Config() Config {
	return a.config
}

// Hash describes the hash operation and its observable behavior.
//
// Hash draws a fresh salt for every call, so two calls with the same password
// return different strings that both verify against it.
func (a *Argon2) Hash(password []byte) (string, error) {
	return a.HashContext(context.Background(), password)
}

// HashContext is Hash with cancellation between KDF passes.
func (a *Argon2) HashContext(ctx context.Context, password []byte) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(a.random, salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomnessUnavailable, err)
	}

	params := a.config.Params()
	hash, err := argon2.DeriveContext(ctx, password, salt, params, a.config.Variant, a.config.Version)
	if err != nil {
		return "", err
	}

	return Encode(PHC{
		Variant: a.config.Variant,
		Version: a.config.Version,
		Params:  params,
		Salt:    salt,
		Hash:    hash,
	}), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify returns (false, nil) when the password does not match, an error wrapping
// ErrMalformedHash when encoded cannot be parsed, and an error wrapping
// ErrComputationFailed when the KDF itself fails or the stored cost exceeds the
// configured limits.
func (a *Argon2) Verify(encoded string, password []byte) (bool, error) {
	return a.VerifyContext(context.Background(), encoded, password)
}

// VerifyContext is Verify with cancellation between KDF passes.
func (a *Argon2) VerifyContext(ctx context.Context, encoded string, password []byte) (bool, error) {
	parsed, err := Decode(encoded)
	if err != nil {
		return false, err
	}
	return a.VerifyDecoded(ctx, parsed, password)
}

// VerifyDecoded recomputes the KDF for an already decoded hash and compares the
// result in constant time.
func (a *Argon2) VerifyDecoded(ctx context.Context, parsed PHC, password []byte) (bool, error) {
	if err := a.CheckLimits(parsed); err != nil {
		return false, fmt.Errorf("%w: %w", ErrComputationFailed, err)
	}

	params := parsed.Params
	params.KeyLength = uint32(len(parsed.Hash))

	computed, err := argon2.DeriveContext(
		ctx,
		password,
		parsed.Salt,
		params,
		parsed.Variant,
		parsed.Version,
		argon2.WithMemoryLimit(a.config.MaxMemory),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", ErrComputationFailed, err)
	}

	return subtle.ConstantTimeCompare(computed, parsed.Hash) == 1, nil
}

// CheckLimits reports whether parsed can be verified within the configured
// cost caps. The error wraps ErrCostLimit, and argon2.ErrAllocationFailure when
// the memory cost is the one over the limit.
func (a *Argon2) CheckLimits(parsed PHC) error {
	maxMemory := a.config.MaxMemory
	if maxMemory == 0 || maxMemory > argon2.MemoryCeiling {
		maxMemory = argon2.MemoryCeiling
	}

	p := parsed.Params
	switch {
	case p.Memory > maxMemory:
		return fmt.Errorf("%w: %w: memory cost %d KiB exceeds %d KiB", ErrCostLimit, argon2.ErrAllocationFailure, p.Memory, maxMemory)
	case a.config.MaxTime != 0 && p.Time > a.config.MaxTime:
		return fmt.Errorf("%w: time cost %d exceeds %d", ErrCostLimit, p.Time, a.config.MaxTime)
	case a.config.MaxParallelism != 0 && p.Parallelism > a.config.MaxParallelism:
		return fmt.Errorf("%w: parallelism %d exceeds %d", ErrCostLimit, p.Parallelism, a.config.MaxParallelism)
	}
	return nil
}

// NeedsUpgrade reports whether encoded was produced with weaker or different
// settings than the hasher's, so callers can rehash after a successful Verify.
func (a *Argon2) NeedsUpgrade(encoded string) (bool, error) {
	parsed, err := Decode(encoded)
	if err != nil {
		return false, err
	}

	switch {
	case parsed.Variant != a.config.Variant:
		return true, nil
	case parsed.Version != a.config.Version:
		return true, nil
	case a.config.Memory > parsed.Params.Memory:
		return true, nil
	case a.config.Time > parsed.Params.Time:
		return true, nil
	case a.config.Parallelism > parsed.Params.Parallelism:
		return true, nil
	case a.config.KeyLength != uint32(len(parsed.Hash)):
		return true, nil
	case a.config.SaltLength > uint32(len(parsed.Salt)):
		return true, nil
	}

	return false, nil
}

func validateConfig(cfg Config) error {
	if !cfg.Variant.Valid() {
		return fmt.Errorf("%w: unknown variant", argon2.ErrInvalidParameters)
	}
	if !cfg.Version.Valid() {
		return fmt.Errorf("%w: unsupported version", argon2.ErrInvalidParameters)
	}
	if err := cfg.Params().Validate(); err != nil {
		return err
	}
	if cfg.SaltLength < MinSaltLength || cfg.SaltLength > MaxSaltLength {
		return fmt.Errorf("%w: salt length must be in [%d, %d]", argon2.ErrInvalidParameters, MinSaltLength, MaxSaltLength)
	}
	if cfg.KeyLength < MinHashLength || cfg.KeyLength > MaxHashLength {
		return fmt.Errorf("%w: key length must be in [%d, %d]", argon2.ErrInvalidParameters, MinHashLength, MaxHashLength)
	}
	if cfg.Memory > argon2.MemoryCeiling || cfg.MaxMemory > argon2.MemoryCeiling {
		return fmt.Errorf("%w: memory above the %d KiB ceiling", argon2.ErrInvalidParameters, argon2.MemoryCeiling)
	}
	if cfg.MaxMemory != 0 && cfg.MaxMemory < cfg.Memory {
		return fmt.Errorf("%w: max memory below configured memory", argon2.ErrInvalidParameters)
	}
	if cfg.MaxTime != 0 && cfg.MaxTime < cfg.Time {
		return fmt.Errorf("%w: max time below configured time", argon2.ErrInvalidParameters)
	}
	if cfg.MaxParallelism != 0 && cfg.MaxParallelism < cfg.Parallelism {
		return fmt.Errorf("%w: max parallelism below configured parallelism", argon2.ErrInvalidParameters)
	}
	return nil
}

var defaultHasher = mustNewArgon2(DefaultConfig())

func mustNewArgon2(cfg Config) *Argon2 {
	a, err := NewArgon2(cfg)
	if err != nil {
		panic("password: " + err.Error())
	}
	return a
}

// Hash hashes password with DefaultConfig and crypto/rand.
func Hash(password []byte) (string, error) {
	return defaultHasher.Hash(password)
}

// Verify checks password against encoded using the parameters stored in encoded.
func Verify(encoded string, password []byte) (bool, error) {
	return defaultHasher.Verify(encoded, password)
}

// NeedsUpgrade reports whether encoded falls short of DefaultConfig.
func NeedsUpgrade(encoded string) (bool, error) {
	return defaultHasher.NeedsUpgrade(encoded)
}
