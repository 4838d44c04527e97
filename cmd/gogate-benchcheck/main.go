// Command gogate-benchcheck compares two `go test -bench` outputs and
// fails when a tracked hot-path benchmark regressed beyond its threshold.
//
//	go test -run '^$' -bench . -count 6 ./ > new.txt
//	gogate-benchcheck -baseline old.txt -candidate new.txt
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
)

// defaultTracked are the request-path benchmarks of the root package.
var defaultTracked = []string{
	"BenchmarkAdmitMemory",
	"BenchmarkAdmitRedis",
	"BenchmarkValidateSession",
}

func main() {
	var (
		baselinePath   string
		candidatePath  string
		tracked        string
		timeThreshold  float64
		allocThreshold float64
	)

	flag.StringVar(&baselinePath, "baseline", "", "baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "candidate benchmark output; - reads stdin")
	flag.StringVar(&tracked, "bench", strings.Join(defaultTracked, ","), "comma-separated benchmarks to check")
	flag.Float64Var(&timeThreshold, "threshold", 0.30, "allowed ns/op regression ratio (0.30 = +30%)")
	flag.Float64Var(&allocThreshold, "alloc-threshold", 0, "allowed allocs/op regression ratio")
	flag.Parse()

	if baselinePath == "" || candidatePath == "" {
		fmt.Fprintln(os.Stderr, "-baseline and -candidate are required")
		os.Exit(2)
	}
	if timeThreshold < 0 || allocThreshold < 0 {
		fmt.Fprintln(os.Stderr, "thresholds must be >= 0")
		os.Exit(2)
	}

	names := splitList(tracked)
	limits := map[string]float64{"ns/op": timeThreshold, "allocs/op": allocThreshold}

	baseline, err := parseFile(baselinePath, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse baseline: %v\n", err)
		os.Exit(1)
	}
	candidate, err := parseFile(candidatePath, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse candidate: %v\n", err)
		os.Exit(1)
	}

	results, failures := compare(baseline, candidate, names, limits)
	fmt.Println("benchmark unit baseline candidate delta")
	for _, r := range results {
		fmt.Printf("%s %s %.3f %.3f %+0.2f%%\n", r.bench, r.unit, r.base, r.cand, r.delta*100)
	}

	if len(failures) > 0 {
		fmt.Fprintln(os.Stderr, "benchmark regression:")
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
		os.Exit(1)
	}
}

type result struct {
	bench string
	unit  string
	base  float64
	cand  float64
	delta float64
}

// compare checks every tracked benchmark and unit against its limit.
func compare(baseline, candidate samples, names []string, limits map[string]float64) ([]result, []string) {
	units := make([]string, 0, len(limits))
	for u := range limits {
		units = append(units, u)
	}
	sort.Strings(units)

	var (
		results  []result
		failures []string
	)
	for _, name := range names {
		for _, unit := range units {
			b, c := baseline[name][unit], candidate[name][unit]
			if len(b) == 0 || len(c) == 0 {
				failures = append(failures, fmt.Sprintf("%s %s: missing samples", name, unit))
				continue
			}
			r := result{bench: name, unit: unit, base: median(b), cand: median(c)}
			switch {
			case r.base > 0:
				r.delta = (r.cand - r.base) / r.base
			case r.cand > 0:
				// zero-alloc baseline that started allocating
				r.delta = 1
			}
			results = append(results, r)
			if r.delta > limits[unit] {
				failures = append(failures, fmt.Sprintf("%s %s regressed %+0.2f%% (limit %+0.2f%%)", name, unit, r.delta*100, limits[unit]*100))
			}
		}
	}
	return results, failures
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
