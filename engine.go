package goHash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goHash/internal/admission"
	"github.com/MrEthical07/goHash/password"
	"go.opentelemetry.io/otel/trace"
)

// Engine hashes and verifies passwords under a memory admission budget, recording
// metrics and audit events for every call.
//
// Engine methods are safe for concurrent use after [Builder.Build].
type Engine struct {
	config    Config
	hasher    *password.Argon2
	admission *admission.Controller
	audit     *auditDispatcher
	metrics   *Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	closed    atomic.Bool
}

// Close flushes pending audit events. Subsequent Hash and Verify calls return
// ErrEngineNotReady. Close is idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closed.Store(true)
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the Engine counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// AdmittedMemory returns the KiB currently reserved by in-flight calls on this
// process.
func (e *Engine) AdmittedMemory() int64 {
	if e == nil || e.admission == nil {
		return 0
	}
	return e.admission.InFlight()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) ready() error {
	if e == nil || e.hasher == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	return nil
}

// Hash produces an encoded hash of pw with the configured parameters and a fresh
// salt.
//
// Hash returns ErrOverloaded when the memory budget is exhausted and an error
// wrapping password.ErrRandomnessUnavailable when no salt could be drawn.
func (e *Engine) Hash(ctx context.Context, pw []byte) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}

	ctx, span := e.startSpan(ctx, spanHash)
	cfg := e.config.Password
	span.SetAttributes(costAttributes(cfg.Variant.String(), cfg.Memory, cfg.Time, cfg.Parallelism)...)
	encoded, err := e.hash(ctx, pw)
	endSpan(span, err)
	return encoded, err
}

func (e *Engine) hash(ctx context.Context, pw []byte) (string, error) {
	start := time.Now()

	release, err := e.admit(ctx, e.config.Password.Memory)
	if err != nil {
		e.metricInc(MetricHashFailure)
		e.logger.WarnContext(ctx, "hash not admitted", slog.Any("error", err))
		return "", err
	}
	defer release()

	encoded, err := e.hasher.HashContext(ctx, pw)
	elapsed := time.Since(start)
	if err != nil {
		e.metricInc(MetricHashFailure)
		e.emitAudit(ctx, auditEventHashFailure, false, elapsed, err, nil)
		e.logger.ErrorContext(ctx, "hash failed",
			slog.Any("error", err),
			slog.Duration("duration", elapsed),
		)
		return "", err
	}

	e.metricInc(MetricHashSuccess)
	e.metricObserve(MetricHashLatency, elapsed)
	e.emitAudit(ctx, auditEventHashSuccess, true, elapsed, nil, e.paramsMetadata(e.config.Password.Memory, e.config.Password.Time, e.config.Password.Parallelism))
	e.logger.DebugContext(ctx, "hash computed", slog.Duration("duration", elapsed))

	return encoded, nil
}

// Verify reports whether pw matches encoded, recomputing the KDF with the
// parameters stored in encoded.
//
// A mismatch is (false, nil). A string that cannot be decoded returns an error
// matching password.ErrMalformedHash and never reaches the admission budget.
func (e *Engine) Verify(ctx context.Context, encoded string, pw []byte) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	ctx, span := e.startSpan(ctx, spanVerify)
	ok, err := e.verify(ctx, encoded, pw)
	if err == nil {
		span.SetAttributes(attrMatch.Bool(ok))
	}
	endSpan(span, err)
	return ok, err
}

func (e *Engine) verify(ctx context.Context, encoded string, pw []byte) (bool, error) {
	start := time.Now()

	parsed, err := password.Decode(encoded)
	if err != nil {
		e.metricInc(MetricVerifyMalformed)
		e.emitAudit(ctx, auditEventVerifyFailure, false, time.Since(start), err, nil)
		return false, err
	}
	trace.SpanFromContext(ctx).SetAttributes(costAttributes(
		parsed.Variant.String(), parsed.Params.Memory, parsed.Params.Time, parsed.Params.Parallelism,
	)...)

	// Hashes over the cost caps fail before the KDF allocates, so they do not
	// need a reservation.
	weight := parsed.Params.Memory
	if e.hasher.CheckLimits(parsed) != nil {
		weight = 0
	}

	release, err := e.admit(ctx, weight)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		e.logger.WarnContext(ctx, "verify not admitted",
			slog.Any("error", err),
			slog.Uint64("memory_kib", uint64(parsed.Params.Memory)),
		)
		return false, err
	}
	defer release()

	ok, err := e.hasher.VerifyDecoded(ctx, parsed, pw)
	elapsed := time.Since(start)
	meta := e.paramsMetadata(parsed.Params.Memory, parsed.Params.Time, parsed.Params.Parallelism)
	switch {
	case err != nil:
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, elapsed, err, meta)
		e.logger.ErrorContext(ctx, "verify failed",
			slog.Any("error", err),
			slog.Duration("duration", elapsed),
		)
		return false, err
	case ok:
		e.metricInc(MetricVerifyMatch)
		e.emitAudit(ctx, auditEventVerifyMatch, true, elapsed, nil, meta)
	default:
		e.metricInc(MetricVerifyMismatch)
		e.emitAudit(ctx, auditEventVerifyMismatch, false, elapsed, nil, meta)
	}
	e.metricObserve(MetricVerifyLatency, elapsed)

	return ok, nil
}

// NeedsUpgrade reports whether encoded was produced with weaker or different
// parameters than the Engine's current configuration.
func (e *Engine) NeedsUpgrade(encoded string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	upgrade, err := e.hasher.NeedsUpgrade(encoded)
	if err != nil {
		e.metricInc(MetricVerifyMalformed)
		return false, err
	}
	if upgrade {
		e.metricInc(MetricUpgradeNeeded)
	}
	return upgrade, nil
}

// admit reserves kib from the admission budget and maps its errors onto the
// Engine error set.
func (e *Engine) admit(ctx context.Context, kib uint32) (func(), error) {
	if e.admission == nil {
		return func() {}, nil
	}

	release, err := e.admission.Acquire(ctx, int64(kib))
	if err == nil {
		return release, nil
	}

	var mapped error
	switch {
	case errors.Is(err, admission.ErrOverloaded):
		mapped = ErrOverloaded
	case errors.Is(err, admission.ErrRedisUnavailable):
		mapped = fmt.Errorf("%w: %v", ErrAdmissionUnavailable, err)
	default:
		return nil, err
	}

	e.metricInc(MetricAdmissionRejected)
	e.emitAudit(ctx, auditEventAdmissionRejected, false, 0, mapped, func() map[string]string {
		return map[string]string{"memory_kib": strconv.FormatUint(uint64(kib), 10)}
	})
	return nil, mapped
}

func (e *Engine) paramsMetadata(memory, passes, parallelism uint32) func() map[string]string {
	return func() map[string]string {
		return map[string]string{
			"memory_kib":  strconv.FormatUint(uint64(memory), 10),
			"time":        strconv.FormatUint(uint64(passes), 10),
			"parallelism": strconv.FormatUint(uint64(parallelism), 10),
		}
	}
}
