// Command hash-loadtest drives an Engine with concurrent hash and verify calls
// and reports throughput, latency percentiles and admission rejections.
//
// With -cluster-kib set, the cluster memory budget is held in Redis at
// -redis-addr, REDIS_ADDR, or an in-process miniredis when neither is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goHash "github.com/MrEthical07/goHash"
)

func main() {
	var (
		passwords   = flag.Int("passwords", 64, "number of distinct passwords to hash")
		concurrency = flag.Int("concurrency", 32, "number of concurrent workers")
		ops         = flag.Int("ops", 2000, "verify operations")
		memory      = flag.Uint("m", 4096, "memory cost in KiB")
		passes      = flag.Uint("t", 1, "number of passes")
		lanes       = flag.Uint("p", 1, "parallelism")
		budgetKiB   = flag.Int64("budget-kib", 64<<10, "local admission budget in KiB (0 disables)")
		wait        = flag.Duration("wait", 100*time.Millisecond, "how long a call may wait for budget")
		clusterKiB  = flag.Int64("cluster-kib", 0, "cluster admission budget in KiB (0 disables)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gh-load", "redis key prefix")
	)
	flag.Parse()

	if *passwords <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "passwords, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	cfg := goHash.DefaultConfig()
	cfg.Password.Memory = uint32(*memory)
	cfg.Password.Time = uint32(*passes)
	cfg.Password.Parallelism = uint32(*lanes)
	// Only hashes produced by this run are verified.
	cfg.Password.MaxMemory = cfg.Password.Memory
	cfg.Password.MaxTime = cfg.Password.Time
	cfg.Password.MaxParallelism = cfg.Password.Parallelism
	cfg.Admission.MemoryKiB = *budgetKiB
	cfg.Admission.Wait = *wait
	cfg.Admission.ClusterMemoryKiB = *clusterKiB
	cfg.Admission.RedisPrefix = *prefix

	builder := goHash.New().WithConfig(cfg)
	if *clusterKiB > 0 {
		client, cleanup, err := openRedis(*redisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()

	secrets := make([][]byte, *passwords)
	for i := range secrets {
		secrets[i] = []byte(fmt.Sprintf("load-password-%d", i))
	}

	fmt.Printf("hashing %d passwords (m=%d t=%d p=%d)...\n", *passwords, *memory, *passes, *lanes)
	hashes, hashStats := runHashPhase(ctx, engine, secrets, *concurrency)
	if len(hashes) == 0 {
		fmt.Fprintln(os.Stderr, "no hash succeeded; raise -budget-kib or -wait")
		os.Exit(1)
	}
	verifyStats := runVerifyPhase(ctx, engine, hashes, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("hash", hashStats)
	printStats("verify", verifyStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: hash_ok=%d verify_match=%d verify_mismatch=%d admission_rejected=%d\n",
		snap.Counters[goHash.MetricHashSuccess],
		snap.Counters[goHash.MetricVerifyMatch],
		snap.Counters[goHash.MetricVerifyMismatch],
		snap.Counters[goHash.MetricAdmissionRejected],
	)
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

// storedHash pairs an encoded hash with the password it was made from.
type storedHash struct {
	encoded string
	secret  []byte
}

func runHashPhase(ctx context.Context, engine *goHash.Engine, secrets [][]byte, concurrency int) ([]storedHash, phaseStats) {
	var (
		wg       sync.WaitGroup
		cursor   int64
		rec      recorder
		mu       sync.Mutex
		produced = make([]storedHash, 0, len(secrets))
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(secrets) {
					return
				}
				t0 := time.Now()
				encoded, err := engine.Hash(ctx, secrets[i])
				rec.observe(time.Since(t0), err)
				if err == nil {
					mu.Lock()
					produced = append(produced, storedHash{encoded: encoded, secret: secrets[i]})
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return produced, rec.stats(time.Since(start))
}

// runVerifyPhase checks the right password three times out of four.
func runVerifyPhase(ctx context.Context, engine *goHash.Engine, hashes []storedHash, ops, concurrency int) phaseStats {
	var (
		wg     sync.WaitGroup
		cursor int64
		rec    recorder
		wrong  = []byte("definitely-not-the-password")
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				h := hashes[r.Intn(len(hashes))]
				pw := h.secret
				expect := true
				if r.Intn(4) == 0 {
					pw, expect = wrong, false
				}

				t0 := time.Now()
				ok, err := engine.Verify(ctx, h.encoded, pw)
				if err == nil && ok != expect {
					err = errUnexpectedResult
				}
				rec.observe(time.Since(t0), err)
			}
		}(w)
	}
	wg.Wait()
	return rec.stats(time.Since(start))
}

var errUnexpectedResult = errors.New("verify returned the wrong answer")

// recorder collects latencies and classifies errors from concurrent workers.
type recorder struct {
	mu         sync.Mutex
	latencies  []time.Duration
	overloaded int64
	failures   int64
}

func (r *recorder) observe(d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err == nil:
		r.latencies = append(r.latencies, d)
	case errors.Is(err, goHash.ErrOverloaded):
		r.overloaded++
	default:
		r.failures++
	}
}

func (r *recorder) stats(total time.Duration) phaseStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := computeStats(total, r.latencies)
	s.overloaded = r.overloaded
	s.failures = r.failures
	return s
}

type phaseStats struct {
	total      time.Duration
	ops        int
	overloaded int64
	failures   int64
	p50        time.Duration
	p95        time.Duration
	p99        time.Duration
	opsPerS    float64
}

func computeStats(total time.Duration, samples []time.Duration) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:   total,
		ops:     len(samples),
		p50:     percentile(samples, 50),
		p95:     percentile(samples, 95),
		p99:     percentile(samples, 99),
		opsPerS: float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ok=%d overloaded=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.overloaded,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
