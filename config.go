package goHash

import (
	"errors"
	"time"

	"github.com/MrEthical07/goHash/argon2"
	"github.com/MrEthical07/goHash/password"
)

// Config defines the Engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Password  PasswordConfig
	Admission AdmissionConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the cost parameters new hashes are produced with.
type PasswordConfig struct {
	Variant     argon2.Variant
	Version     argon2.Version
	Memory      uint32 // in KiB
	Time        uint32
	Parallelism uint32
	SaltLength  uint32
	KeyLength   uint32

	// MaxMemory caps the memory cost accepted from stored hashes during
	// verification, in KiB. Zero leaves only argon2.MemoryCeiling in force.
	MaxMemory uint32
	// MaxTime and MaxParallelism cap the pass and lane counts accepted from
	// stored hashes during verification. Zero disables the cap.
	MaxTime        uint32
	MaxParallelism uint32
}

// verifyMemoryCap is the largest memory cost Verify will ever compute.
func (c PasswordConfig) verifyMemoryCap() int64 {
	if c.MaxMemory == 0 {
		return int64(argon2.MemoryCeiling)
	}
	return int64(c.MaxMemory)
}

/*
====================================
ADMISSION CONFIG
====================================
*/

// AdmissionConfig bounds the memory committed to concurrent KDF calls.
// Zero budgets disable the corresponding check.
type AdmissionConfig struct {
	MemoryKiB        int64
	Wait             time.Duration
	ClusterMemoryKiB int64
	LeaseTTL         time.Duration
	RedisPrefix      string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the argon2id baseline with bounded verification costs
// and a local admission budget that fits one hash at the verification memory
// cap (about fifty concurrent default-cost calls).
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Password: PasswordConfig{
			Variant:        pw.Variant,
			Version:        pw.Version,
			Memory:         pw.Memory,
			Time:           pw.Time,
			Parallelism:    pw.Parallelism,
			SaltLength:     pw.SaltLength,
			KeyLength:      pw.KeyLength,
			MaxMemory:      pw.MaxMemory,
			MaxTime:        pw.MaxTime,
			MaxParallelism: pw.MaxParallelism,
		},
		Admission: AdmissionConfig{
			MemoryKiB:   int64(pw.MaxMemory),
			Wait:        250 * time.Millisecond,
			LeaseTTL:    2 * time.Minute,
			RedisPrefix: "gh",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func (c PasswordConfig) hasherConfig() password.Config {
	return password.Config{
		Variant:        c.Variant,
		Version:        c.Version,
		Memory:         c.Memory,
		Time:           c.Time,
		Parallelism:    c.Parallelism,
		SaltLength:     c.SaltLength,
		KeyLength:      c.KeyLength,
		MaxMemory:      c.MaxMemory,
		MaxTime:        c.MaxTime,
		MaxParallelism: c.MaxParallelism,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first inconsistency in c. Password cost errors wrap
// argon2.ErrInvalidParameters.
func (c *Config) Validate() error {
	// Password
	if _, err := password.NewArgon2(c.Password.hasherConfig()); err != nil {
		return err
	}

	// Admission
	if c.Admission.MemoryKiB < 0 {
		return errors.New("Admission MemoryKiB must be >= 0")
	}
	// Every hash Verify accepts must fit in an empty budget.
	if c.Admission.MemoryKiB > 0 && c.Admission.MemoryKiB < c.Password.verifyMemoryCap() {
		return errors.New("Admission MemoryKiB must fit one hash at Password MaxMemory")
	}
	if c.Admission.Wait < 0 {
		return errors.New("Admission Wait must be >= 0")
	}
	if c.Admission.ClusterMemoryKiB < 0 {
		return errors.New("Admission ClusterMemoryKiB must be >= 0")
	}
	if c.Admission.ClusterMemoryKiB > 0 {
		if c.Admission.ClusterMemoryKiB < c.Password.verifyMemoryCap() {
			return errors.New("Admission ClusterMemoryKiB must fit one hash at Password MaxMemory")
		}
		if c.Admission.LeaseTTL <= 0 {
			return errors.New("Admission LeaseTTL must be > 0 when the cluster budget is enabled")
		}
		if c.Admission.RedisPrefix == "" {
			return errors.New("Admission RedisPrefix must not be empty when the cluster budget is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
