package main

import (
	"errors"
	"testing"
	"time"

	goHash "github.com/MrEthical07/goHash"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	cases := map[int]time.Duration{0: 1, 50: 5, 95: 9, 100: 10}
	for p, want := range cases {
		if got := percentile(samples, p); got != want {
			t.Fatalf("percentile(%d) = %v, want %v", p, got, want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("percentile(nil) = %v", got)
	}
}

func TestRecorderClassifiesErrors(t *testing.T) {
	var rec recorder
	rec.observe(3*time.Millisecond, nil)
	rec.observe(time.Millisecond, nil)
	rec.observe(time.Millisecond, goHash.ErrOverloaded)
	rec.observe(time.Millisecond, errors.New("boom"))
	rec.observe(time.Millisecond, errUnexpectedResult)

	s := rec.stats(time.Second)
	if s.ops != 2 || s.overloaded != 1 || s.failures != 2 {
		t.Fatalf("stats = %+v", s)
	}
	if s.p50 != time.Millisecond || s.opsPerS != 2 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestPhasesAgainstEngine(t *testing.T) {
	cfg := goHash.DefaultConfig()
	cfg.Password.Memory = 64
	cfg.Password.Time = 1
	cfg.Password.MaxMemory = 64
	cfg.Admission.MemoryKiB = 256
	cfg.Admission.Wait = time.Second

	engine, err := goHash.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	secrets := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	hashes, hashStats := runHashPhase(t.Context(), engine, secrets, 4)
	if len(hashes) != len(secrets) || hashStats.failures != 0 || hashStats.overloaded != 0 {
		t.Fatalf("hash phase = %d hashes, %+v", len(hashes), hashStats)
	}

	verifyStats := runVerifyPhase(t.Context(), engine, hashes, 40, 4)
	if verifyStats.ops != 40 || verifyStats.failures != 0 {
		t.Fatalf("verify phase = %+v", verifyStats)
	}
	if engine.AdmittedMemory() != 0 {
		t.Fatalf("admitted memory after phases = %d", engine.AdmittedMemory())
	}
}

func TestOpenRedisFallsBackToMiniredis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	client, cleanup, err := openRedis("")
	if err != nil {
		t.Fatalf("openRedis: %v", err)
	}
	defer cleanup()

	if err := client.Ping(t.Context()).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
