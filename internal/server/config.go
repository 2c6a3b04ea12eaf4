package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	goHash "github.com/MrEthical07/goHash"
)

// Config is the daemon configuration, read from HASHD_* environment variables.
type Config struct {
	Addr            string        `validate:"required"`
	MaxBodyBytes    int64         `validate:"gt=0,lte=1048576"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	CORSOrigins     []string      `validate:"dive,required"`

	MemoryKiB   uint32 `validate:"gte=8"`
	TimeCost    uint32 `validate:"gte=1"`
	Parallelism uint32 `validate:"gte=1,lte=255"`

	// Verification caps for stored hashes. Zero MaxMemoryKiB leaves the KDF
	// arena ceiling; zero MaxTimeCost or MaxParallelism disables that cap.
	MaxMemoryKiB   uint32
	MaxTimeCost    uint32
	MaxParallelism uint32

	AdmissionMemoryKiB int64         `validate:"gte=0"`
	AdmissionWait      time.Duration `validate:"gte=0"`
	RedisAddr          string
	RedisPrefix        string `validate:"required"`
	ClusterMemoryKiB   int64  `validate:"gte=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	Metrics  bool
	Audit    bool
}

// DefaultConfig returns the settings used for variables that are not set.
func DefaultConfig() Config {
	engine := goHash.DefaultConfig()
	return Config{
		Addr:               ":8080",
		MaxBodyBytes:       16 << 10,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		RequestTimeout:     10 * time.Second,
		MemoryKiB:          engine.Password.Memory,
		TimeCost:           engine.Password.Time,
		Parallelism:        engine.Password.Parallelism,
		MaxMemoryKiB:       engine.Password.MaxMemory,
		MaxTimeCost:        engine.Password.MaxTime,
		MaxParallelism:     engine.Password.MaxParallelism,
		AdmissionMemoryKiB: engine.Admission.MemoryKiB,
		AdmissionWait:      engine.Admission.Wait,
		RedisPrefix:        engine.Admission.RedisPrefix,
		LogLevel:           "info",
		Metrics:            true,
	}
}

// LoadConfig reads the configuration through lookup, normally os.LookupEnv.
// Every unparsable variable is reported, not just the first.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	p := envParser{lookup: lookup}

	p.setString("HASHD_ADDR", &cfg.Addr)
	p.setInt64("HASHD_MAX_BODY_BYTES", &cfg.MaxBodyBytes)
	p.setDuration("HASHD_READ_TIMEOUT", &cfg.ReadTimeout)
	p.setDuration("HASHD_WRITE_TIMEOUT", &cfg.WriteTimeout)
	p.setDuration("HASHD_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	p.setDuration("HASHD_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	p.setList("HASHD_CORS_ORIGINS", &cfg.CORSOrigins)
	p.setUint32("HASHD_MEMORY_KIB", &cfg.MemoryKiB)
	p.setUint32("HASHD_TIME_COST", &cfg.TimeCost)
	p.setUint32("HASHD_PARALLELISM", &cfg.Parallelism)
	p.setUint32("HASHD_MAX_MEMORY", &cfg.MaxMemoryKiB)
	p.setUint32("HASHD_MAX_TIME", &cfg.MaxTimeCost)
	p.setUint32("HASHD_MAX_PARALLELISM", &cfg.MaxParallelism)
	p.setInt64("HASHD_ADMISSION_MEMORY_KIB", &cfg.AdmissionMemoryKiB)
	p.setDuration("HASHD_ADMISSION_WAIT", &cfg.AdmissionWait)
	p.setString("HASHD_REDIS_ADDR", &cfg.RedisAddr)
	p.setString("HASHD_REDIS_PREFIX", &cfg.RedisPrefix)
	p.setInt64("HASHD_CLUSTER_MEMORY_KIB", &cfg.ClusterMemoryKiB)
	p.setString("HASHD_LOG_LEVEL", &cfg.LogLevel)
	p.setBool("HASHD_METRICS", &cfg.Metrics)
	p.setBool("HASHD_AUDIT", &cfg.Audit)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = validator.New()

// Validate checks field ranges and that the derived engine configuration is valid.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		errs := make([]error, 0, len(ve))
		for _, fe := range ve {
			errs = append(errs, fmt.Errorf("config %s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return errors.Join(errs...)
	}
	if c.ClusterMemoryKiB > 0 && c.RedisAddr == "" {
		return errors.New("config: HASHD_CLUSTER_MEMORY_KIB requires HASHD_REDIS_ADDR")
	}

	engine := c.EngineConfig()
	if err := engine.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EngineConfig maps the daemon settings onto a goHash.Config. A non-zero
// verification cap below the hashing cost is raised to it so the daemon can
// always verify its own hashes.
func (c Config) EngineConfig() goHash.Config {
	cfg := goHash.DefaultConfig()
	cfg.Password.Memory = c.MemoryKiB
	cfg.Password.Time = c.TimeCost
	cfg.Password.Parallelism = c.Parallelism
	cfg.Password.MaxMemory = atLeast(c.MaxMemoryKiB, c.MemoryKiB)
	cfg.Password.MaxTime = atLeast(c.MaxTimeCost, c.TimeCost)
	cfg.Password.MaxParallelism = atLeast(c.MaxParallelism, c.Parallelism)
	cfg.Admission.MemoryKiB = c.AdmissionMemoryKiB
	cfg.Admission.Wait = c.AdmissionWait
	cfg.Admission.ClusterMemoryKiB = c.ClusterMemoryKiB
	cfg.Admission.RedisPrefix = c.RedisPrefix
	cfg.Audit.Enabled = c.Audit
	cfg.Metrics.Enabled = c.Metrics
	cfg.Metrics.EnableLatencyHistograms = c.Metrics
	return cfg
}

func atLeast(limit, cost uint32) uint32 {
	if limit != 0 && limit < cost {
		return cost
	}
	return limit
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type envParser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *envParser) value(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *envParser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *envParser) setString(key string, dst *string) {
	if v, ok := p.value(key); ok {
		*dst = v
	}
}

func (p *envParser) setList(key string, dst *[]string) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (p *envParser) setInt64(key string, dst *int64) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *envParser) setUint32(key string, dst *uint32) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = uint32(n)
}

func (p *envParser) setDuration(key string, dst *time.Duration) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

func (p *envParser) setBool(key string, dst *bool) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}
