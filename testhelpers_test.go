package goHash

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// lowCostConfig keeps KDF calls in the low milliseconds for tests.
func lowCostConfig() Config {
	cfg := DefaultConfig()
	cfg.Password.Memory = 64
	cfg.Password.Time = 1
	cfg.Password.MaxMemory = 1024
	cfg.Admission.MemoryKiB = 1024
	cfg.Admission.Wait = 0
	return cfg
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func buildTestEngine(t *testing.T, cfg Config, sink AuditSink) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
