package goHash

import (
	"context"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
)

const auditEmitTimeout = 5 * time.Second

// auditDispatcher decouples Engine calls from sink latency: events are queued on
// a buffered channel and delivered by a single worker goroutine.
type auditDispatcher struct {
	dropIfFull bool
	sink       AuditSink
	logger     *slog.Logger

	ch        chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, logger *slog.Logger) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &auditDispatcher{
		dropIfFull: cfg.DropIfFull,
		sink:       sink,
		logger:     logger,
		ch:         make(chan AuditEvent, cfg.BufferSize),
		done:       make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver bounds each sink call so a stuck sink cannot stall shutdown forever,
// and keeps the worker alive if the sink panics.
func (d *auditDispatcher) deliver(event AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), auditEmitTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("audit sink panicked", slog.String("event_type", event.EventType), slog.Any("panic", r))
		}
	}()

	d.sink.Emit(ctx, event)
}

// Emit enqueues event. With DropIfFull a full buffer drops the event and bumps
// the dropped counter; otherwise Emit waits for room or for ctx.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// drop logs at powers of two so a sustained overflow does not flood the log.
func (d *auditDispatcher) drop(event AuditEvent) {
	n := d.dropped.Add(1)
	if bits.OnesCount64(n) == 1 {
		d.logger.Warn("audit buffer full, dropping events",
			slog.String("event_type", event.EventType),
			slog.Uint64("dropped_total", n),
		)
	}
}

// Close stops accepting events, drains the buffer into the sink and waits for
// the worker to exit. It is safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the buffer was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
