package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goHash "github.com/MrEthical07/goHash"
)

type fakeSource struct {
	snapshot goHash.MetricsSnapshot
	dropped  uint64
	inFlight int64
}

func (f fakeSource) MetricsSnapshot() goHash.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }
func (f fakeSource) AdmittedMemory() int64                   { return f.inFlight }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHash.MetricsSnapshot{
			Counters:   map[goHash.MetricID]uint64{},
			Histograms: map[goHash.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCountersHistogramsAndGauge(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHash.MetricsSnapshot{
			Counters: map[goHash.MetricID]uint64{
				goHash.MetricVerifyMatch: 7,
			},
			Histograms: map[goHash.MetricID][]uint64{
				goHash.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped:  2,
		inFlight: 19456,
	})

	out := exp.Render()
	for _, want := range []string{
		"gohash_verify_match_total 7",
		"gohash_hash_success_total 0",
		"# TYPE gohash_verify_latency_seconds histogram",
		`gohash_verify_latency_seconds_bucket{le="0.01"} 1`,
		`gohash_verify_latency_seconds_bucket{le="+Inf"} 36`,
		"gohash_verify_latency_seconds_count 36",
		"# TYPE gohash_admission_inflight_kib gauge",
		"gohash_admission_inflight_kib 19456",
		"gohash_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "gohash_hash_latency_seconds") {
		t.Fatalf("histograms absent from the snapshot must not be rendered:\n%s", out)
	}
}

func TestRenderFromEngine(t *testing.T) {
	cfg := goHash.DefaultConfig()
	cfg.Password.Memory = 64
	cfg.Password.Time = 1
	engine, err := goHash.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Hash(context.Background(), []byte("pw")); err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	out := NewPrometheusExporter(engine).Render()
	if !strings.Contains(out, "gohash_hash_success_total 1") {
		t.Fatalf("expected hash counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, `gohash_hash_latency_seconds_bucket{le="+Inf"} 1`) {
		t.Fatalf("expected hash latency observation, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHash.MetricsSnapshot{
			Counters:   map[goHash.MetricID]uint64{goHash.MetricHashSuccess: 1},
			Histograms: map[goHash.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goHash.MetricsSnapshot{
			Counters: map[goHash.MetricID]uint64{
				goHash.MetricHashSuccess:    1000,
				goHash.MetricVerifyMatch:    800,
				goHash.MetricVerifyMismatch: 40,
			},
			Histograms: map[goHash.MetricID][]uint64{
				goHash.MetricHashLatency:   {10, 20, 30, 40, 50, 60, 70, 80},
				goHash.MetricVerifyLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
