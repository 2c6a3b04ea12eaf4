// Command perf-regression compares two `go test -bench` outputs.
//
// Overhead benchmarks fail when they get slower than the threshold allows. The
// default-parameter KDF benchmark also fails when it gets much faster or uses
// less memory, since that means the work factor shrank.
//
//	go test -run '^$' -bench . -count 5 ./... > new.txt
//	perf-regression -baseline old.txt -candidate new.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

const defaultThreshold = 0.30

// bound says which direction of change counts as a regression.
type bound int

const (
	maxIncrease bound = 1 << iota
	maxDecrease
)

type rule struct {
	benchmark string
	unit      string
	bound     bound
}

var rules = []rule{
	{benchmark: "BenchmarkDeriveDefault", unit: "ns/op", bound: maxIncrease | maxDecrease},
	{benchmark: "BenchmarkDeriveDefault", unit: "B/op", bound: maxDecrease},
	{benchmark: "BenchmarkEngineVerifyLowCost", unit: "ns/op", bound: maxIncrease},
	{benchmark: "BenchmarkEngineVerifyLowCost", unit: "allocs/op", bound: maxIncrease},
	{benchmark: "BenchmarkMetricsIncParallel", unit: "ns/op", bound: maxIncrease},
	{benchmark: "BenchmarkRender", unit: "ns/op", bound: maxIncrease},
}

// samples maps benchmark name to unit to every value seen for it.
type samples map[string]map[string][]float64

type result struct {
	rule      rule
	baseline  float64
	candidate float64
	delta     float64
	failure   string
}

func main() {
	var (
		baselinePath  string
		candidatePath string
		threshold     float64
	)

	flag.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flag.Float64Var(&threshold, "threshold", defaultThreshold, "maximum allowed change ratio (0.30 = 30%)")
	flag.Parse()

	if baselinePath == "" || candidatePath == "" {
		fmt.Fprintln(os.Stderr, "-baseline and -candidate are required")
		os.Exit(2)
	}
	if threshold < 0 {
		fmt.Fprintln(os.Stderr, "-threshold must be >= 0")
		os.Exit(2)
	}

	baseline, err := parseFile(baselinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse baseline: %v\n", err)
		os.Exit(1)
	}
	candidate, err := parseFile(candidatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse candidate: %v\n", err)
		os.Exit(1)
	}

	results := compare(baseline, candidate, rules, threshold)

	fmt.Println("benchmark unit baseline candidate delta")
	failed := false
	for _, r := range results {
		if r.failure != "" {
			failed = true
			continue
		}
		fmt.Printf("%s %s %.3f %.3f %+0.2f%%\n", r.rule.benchmark, r.rule.unit, r.baseline, r.candidate, r.delta*100)
	}

	if failed {
		fmt.Fprintln(os.Stderr, "performance check failed:")
		for _, r := range results {
			if r.failure != "" {
				fmt.Fprintf(os.Stderr, "  - %s\n", r.failure)
			}
		}
		os.Exit(1)
	}
}

// compare evaluates every rule on the medians of both sample sets.
func compare(baseline, candidate samples, rules []rule, threshold float64) []result {
	results := make([]result, 0, len(rules))
	for _, rl := range rules {
		r := result{rule: rl}
		base := baseline[rl.benchmark][rl.unit]
		cand := candidate[rl.benchmark][rl.unit]

		switch {
		case len(base) == 0 || len(cand) == 0:
			r.failure = fmt.Sprintf("missing samples for %s %s", rl.benchmark, rl.unit)
		default:
			r.baseline, r.candidate = median(base), median(cand)
			if r.baseline <= 0 {
				r.failure = fmt.Sprintf("invalid baseline median for %s %s", rl.benchmark, rl.unit)
				break
			}
			r.delta = (r.candidate - r.baseline) / r.baseline
			if rl.bound&maxIncrease != 0 && r.delta > threshold {
				r.failure = fmt.Sprintf("%s %s rose by %+0.2f%% (limit %0.2f%%)", rl.benchmark, rl.unit, r.delta*100, threshold*100)
			}
			if rl.bound&maxDecrease != 0 && r.delta < -threshold {
				r.failure = fmt.Sprintf("%s %s fell by %+0.2f%% (limit %0.2f%%)", rl.benchmark, rl.unit, r.delta*100, threshold*100)
			}
		}
		results = append(results, r)
	}
	return results
}

func parseFile(path string) (samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

// parse reads benchmark lines of the form
//
//	BenchmarkName-8  	  100	  12345 ns/op	  64 B/op	  2 allocs/op
func parse(r io.Reader) (samples, error) {
	out := samples{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || !strings.HasPrefix(fields[0], "Benchmark") {
			continue
		}

		name := trimProcs(fields[0])
		units, ok := out[name]
		if !ok {
			units = map[string][]float64{}
			out[name] = units
		}
		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			units[fields[i+1]] = append(units[fields[i+1]], value)
		}
	}
	return out, scanner.Err()
}

// trimProcs drops the -GOMAXPROCS suffix.
func trimProcs(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
