package goHash

import (
	"errors"
	"io"
	"log/slog"

	"github.com/MrEthical07/goHash/internal/admission"
	"github.com/MrEthical07/goHash/password"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Builder assembles an Engine. A Builder can be used for a single Build call.
//
// Builder instances are intended to be configured during initialization and then treated as immutable.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	auditSink AuditSink
	logger    *slog.Logger
	random    io.Reader
	tracing   trace.TracerProvider

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the client backing the cluster admission budget. It is
// required when Admission.ClusterMemoryKiB is set and ignored otherwise.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination of audit events. Events are only produced
// when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Without one the Engine logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRandom replaces crypto/rand as the salt source. Intended for tests.
func (b *Builder) WithRandom(r io.Reader) *Builder {
	b.random = r
	return b
}

// WithTracerProvider sets the provider Hash and Verify spans are started from.
// Without one the global otel provider is used.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracing = tp
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Admission.ClusterMemoryKiB > 0 && b.redis == nil {
		return nil, errors.New("Admission ClusterMemoryKiB requires redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tp := b.tracing
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	hasherCfg := cfg.Password.hasherConfig()
	hasherCfg.Random = b.random
	hasher, err := password.NewArgon2(hasherCfg)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cfg,
		hasher: hasher,
		admission: admission.New(b.redis, admission.Config{
			LocalMemoryKiB:   cfg.Admission.MemoryKiB,
			Wait:             cfg.Admission.Wait,
			ClusterMemoryKiB: cfg.Admission.ClusterMemoryKiB,
			LeaseTTL:         cfg.Admission.LeaseTTL,
			KeyPrefix:        cfg.Admission.RedisPrefix + ":adm:",
		}),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink, logger),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
		tracer:  tp.Tracer(tracerName),
	}

	b.built = true

	logger.Info("hash engine ready",
		slog.String("variant", cfg.Password.Variant.String()),
		slog.Uint64("memory_kib", uint64(cfg.Password.Memory)),
		slog.Uint64("time", uint64(cfg.Password.Time)),
		slog.Uint64("parallelism", uint64(cfg.Password.Parallelism)),
		slog.Int64("admission_memory_kib", cfg.Admission.MemoryKiB),
		slog.Bool("cluster_admission", cfg.Admission.ClusterMemoryKiB > 0),
	)
	for _, f := range engine.SecurityReport().Findings {
		logger.Warn("hash config finding", slog.String("field", f.Field), slog.String("message", f.Message))
	}

	return engine, nil
}
