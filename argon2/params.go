package argon2

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters is returned when cost settings are outside the legal range.
	// It is raised before any memory is acquired.
	ErrInvalidParameters = errors.New("argon2: invalid parameters")
	// ErrAllocationFailure is returned when the working memory cannot be acquired.
	ErrAllocationFailure = errors.New("argon2: memory allocation failed")
)

const (
	// MinTime is the smallest accepted number of passes.
	MinTime uint32 = 1
	// MinParallelism is the smallest accepted lane count.
	MinParallelism uint32 = 1
	// MaxParallelism is the largest lane count allowed by RFC 9106.
	MaxParallelism uint32 = 1<<24 - 1
	// MinKeyLength is the shortest tag the algorithm can produce.
	MinKeyLength uint32 = 4
	// MinMemoryPerLane is the number of KiB each lane needs at minimum.
	MinMemoryPerLane uint32 = 2 * syncPoints
	// MemoryCeiling is the largest arena, in KiB, Derive will ever allocate
	// (16 GiB). Larger requests fail with ErrAllocationFailure whatever the
	// per-call limit.
	MemoryCeiling uint32 = 1 << 24
)

// Variant selects the addressing mode of the fill phase.
type Variant uint32

const (
	// Argon2d uses data-dependent addressing for every block.
	Argon2d Variant = 0
	// Argon2i uses data-independent addressing for every block.
	Argon2i Variant = 1
	// Argon2id uses data-independent addressing for the first half of the first pass.
	Argon2id Variant = 2
)

// String returns the identifier used in encoded hashes.
func (v Variant) String() string {
	switch v {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("argon2(%d)", uint32(v))
	}
}

// Valid reports whether v is one of the three defined variants.
func (v Variant) Valid() bool {
	return v == Argon2d || v == Argon2i || v == Argon2id
}

// ParseVariant maps an encoded identifier such as "argon2id" to its Variant.
// Matching is exact and case-sensitive.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "argon2d":
		return Argon2d, nil
	case "argon2i":
		return Argon2i, nil
	case "argon2id":
		return Argon2id, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidParameters, s)
	}
}

// Version is the algorithm revision mixed into H0.
type Version uint32

const (
	// Version10 is the original 1.0 revision (decimal 16).
	Version10 Version = 0x10
	// Version13 is the 1.3 revision (decimal 19) and the default.
	Version13 Version = 0x13
)

// Valid reports whether v is a supported revision.
func (v Version) Valid() bool {
	return v == Version10 || v == Version13
}

// Params are the cost settings of a single derivation.
//
// Memory is expressed in KiB. The arena actually used is Memory rounded down to a
// multiple of 4*Parallelism blocks; the unrounded value is still bound into H0.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint32
	KeyLength   uint32
}

// Validate returns an error wrapping ErrInvalidParameters when p is out of range.
func (p Params) Validate() error {
	if p.Time < MinTime {
		return fmt.Errorf("%w: time cost must be >= %d", ErrInvalidParameters, MinTime)
	}
	if p.Parallelism < MinParallelism || p.Parallelism > MaxParallelism {
		return fmt.Errorf("%w: parallelism must be in [%d, %d]", ErrInvalidParameters, MinParallelism, MaxParallelism)
	}
	if uint64(p.Memory) < uint64(MinMemoryPerLane)*uint64(p.Parallelism) {
		return fmt.Errorf("%w: memory must be >= %d KiB per lane", ErrInvalidParameters, MinMemoryPerLane)
	}
	if p.KeyLength < MinKeyLength {
		return fmt.Errorf("%w: key length must be >= %d bytes", ErrInvalidParameters, MinKeyLength)
	}
	return nil
}

// blocks returns the arena size in blocks: Memory rounded down to a multiple of
// syncPoints*Parallelism.
func (p Params) blocks() uint32 {
	unit := syncPoints * p.Parallelism
	return p.Memory / unit * unit
}
