package goHash

import (
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goHash/argon2"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Password.Variant != argon2.Argon2id || cfg.Password.Memory != 19456 || cfg.Password.Time != 2 || cfg.Password.Parallelism != 1 {
		t.Fatalf("unexpected password defaults: %+v", cfg.Password)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "argon2i allowed",
			mutate: func(c *Config) {
				c.Password.Variant = argon2.Argon2i
			},
			wantValid: true,
		},
		{
			name: "unknown variant",
			mutate: func(c *Config) {
				c.Password.Variant = argon2.Variant(7)
			},
			wantValid: false,
		},
		{
			name: "zero time",
			mutate: func(c *Config) {
				c.Password.Time = 0
			},
			wantValid: false,
		},
		{
			name: "memory below lanes minimum",
			mutate: func(c *Config) {
				c.Password.Parallelism = 4
				c.Password.Memory = 31
				c.Admission.MemoryKiB = 0
			},
			wantValid: false,
		},
		{
			name: "short salt",
			mutate: func(c *Config) {
				c.Password.SaltLength = 7
			},
			wantValid: false,
		},
		{
			name: "max memory below memory",
			mutate: func(c *Config) {
				c.Password.MaxMemory = c.Password.Memory - 1
			},
			wantValid: false,
		},
		{
			name: "admission disabled",
			mutate: func(c *Config) {
				c.Admission.MemoryKiB = 0
			},
			wantValid: true,
		},
		{
			name: "admission too small for one hash",
			mutate: func(c *Config) {
				c.Admission.MemoryKiB = int64(c.Password.Memory) - 1
			},
			wantValid: false,
		},
		{
			name: "admission below verification cap",
			mutate: func(c *Config) {
				c.Admission.MemoryKiB = int64(c.Password.MaxMemory) - 1
			},
			wantValid: false,
		},
		{
			name: "cluster below verification cap",
			mutate: func(c *Config) {
				c.Admission.ClusterMemoryKiB = int64(c.Password.MaxMemory) - 1
			},
			wantValid: false,
		},
		{
			name: "uncapped verification with budget",
			mutate: func(c *Config) {
				c.Password.MaxMemory = 0
			},
			wantValid: false,
		},
		{
			name: "uncapped verification without budget",
			mutate: func(c *Config) {
				c.Password.MaxMemory = 0
				c.Admission.MemoryKiB = 0
			},
			wantValid: true,
		},
		{
			name: "lower cap with matching budget",
			mutate: func(c *Config) {
				c.Password.MaxMemory = 8 * c.Password.Memory
				c.Admission.MemoryKiB = int64(c.Password.MaxMemory)
			},
			wantValid: true,
		},
		{
			name: "max time below time",
			mutate: func(c *Config) {
				c.Password.MaxTime = c.Password.Time - 1
			},
			wantValid: false,
		},
		{
			name: "max parallelism below parallelism",
			mutate: func(c *Config) {
				c.Password.Parallelism = 4
				c.Password.MaxParallelism = 2
			},
			wantValid: false,
		},
		{
			name: "negative wait",
			mutate: func(c *Config) {
				c.Admission.Wait = -time.Second
			},
			wantValid: false,
		},
		{
			name: "cluster budget without lease",
			mutate: func(c *Config) {
				c.Admission.ClusterMemoryKiB = 1 << 20
				c.Admission.LeaseTTL = 0
			},
			wantValid: false,
		},
		{
			name: "cluster budget valid",
			mutate: func(c *Config) {
				c.Admission.ClusterMemoryKiB = 1 << 20
			},
			wantValid: true,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "histograms without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigValidatePasswordErrorsWrapInvalidParameters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password.Time = 0
	if err := cfg.Validate(); !errors.Is(err, argon2.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}
