// Package threshold evaluates pass/fail assertions against scenario statistics.
//
// An assertion reads "metric:aggregate operator value", for example:
//
//	elapsed:p95 < 50        unit elapsed-time percentile in ms
//	elapsed:max <= 200      slowest unit in ms
//	load:mean > 50          mean pool load in percent
//	failures:count == 0     units recorded as ERR
//	failures:rate < 0.2     failed units as a fraction of all units
//	units:rate > 10         units per second
//	workers:max <= 4        peak workers implied by load
//	duration:total < 5000   scenario wall-clock time in ms
package threshold

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/torosent/crankbench/internal/metrics"
)

// Operator compares an observed value with a threshold value.
type Operator string

const (
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
	Equal        Operator = "=="
)

// tolerance absorbs float noise in ==, <= and >=.
const tolerance = 1e-9

var comparisons = map[Operator]func(actual, want float64) bool{
	Less:         func(a, w float64) bool { return a < w },
	LessEqual:    func(a, w float64) bool { return a <= w || near(a, w) },
	Greater:      func(a, w float64) bool { return a > w },
	GreaterEqual: func(a, w float64) bool { return a >= w || near(a, w) },
	Equal:        near,
}

func near(a, b float64) bool { return math.Abs(a-b) < tolerance }

// Holds reports whether "actual op want" is true. Unknown operators never hold.
func (op Operator) Holds(actual, want float64) bool {
	cmp, ok := comparisons[op]
	return ok && cmp(actual, want)
}

// Threshold is one parsed assertion.
type Threshold struct {
	Metric    string
	Aggregate string
	Operator  Operator
	Value     float64
	Raw       string // trimmed input, used for display
}

// Result is the outcome of checking one Threshold.
type Result struct {
	Threshold Threshold `json:"-" yaml:"-"`
	Expr      string    `json:"threshold" yaml:"threshold"`
	Actual    float64   `json:"actual" yaml:"actual"`
	Pass      bool      `json:"pass" yaml:"pass"`
	Message   string    `json:"message" yaml:"message"`
}

type extractor func(metrics.Stats) float64

// Elapsed values are milliseconds, load values percentages of the pool.
var extractors = map[string]map[string]extractor{
	"elapsed": {
		"p50":  func(s metrics.Stats) float64 { return s.P50ElapsedMs },
		"p90":  func(s metrics.Stats) float64 { return s.P90ElapsedMs },
		"p95":  func(s metrics.Stats) float64 { return s.P95ElapsedMs },
		"p99":  func(s metrics.Stats) float64 { return s.P99ElapsedMs },
		"avg":  func(s metrics.Stats) float64 { return s.MeanElapsedMs },
		"mean": func(s metrics.Stats) float64 { return s.MeanElapsedMs },
		"min":  func(s metrics.Stats) float64 { return s.MinElapsedMs },
		"max":  func(s metrics.Stats) float64 { return s.MaxElapsedMs },
	},
	"load": {
		"avg":  func(s metrics.Stats) float64 { return s.MeanLoad },
		"mean": func(s metrics.Stats) float64 { return s.MeanLoad },
		"max":  func(s metrics.Stats) float64 { return s.MaxLoad },
	},
	"failures": {
		"count": func(s metrics.Stats) float64 { return float64(s.Failures) },
		"rate":  failureRate,
	},
	"units": {
		"count": func(s metrics.Stats) float64 { return float64(s.Total) },
		"rate":  func(s metrics.Stats) float64 { return s.UnitsPerSec },
	},
	"workers": {
		"max": func(s metrics.Stats) float64 { return float64(s.PeakWorkers) },
	},
	"duration": {
		"total": func(s metrics.Stats) float64 { return s.DurationMs },
	},
}

func failureRate(s metrics.Stats) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Total)
}

var expr = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse reads one assertion.
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, errors.New("empty threshold")
	}
	m := expr.FindStringSubmatch(s)
	if m == nil {
		return Threshold{}, fmt.Errorf("malformed threshold %q: want metric:aggregate operator value, e.g. 'elapsed:p95 < 50'", s)
	}
	metric, agg, op := m[1], m[2], Operator(m[3])

	aggs, ok := extractors[metric]
	if !ok {
		return Threshold{}, fmt.Errorf("unknown metric %q (one of %s)", metric, keyList(extractors))
	}
	if _, ok := aggs[agg]; !ok {
		return Threshold{}, fmt.Errorf("metric %s has no aggregate %q (one of %s)", metric, agg, keyList(aggs))
	}
	if _, ok := comparisons[op]; !ok {
		return Threshold{}, fmt.Errorf("unknown operator %q (one of <, <=, >, >=, ==)", op)
	}
	value, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("bad threshold value %q: %w", m[4], err)
	}
	return Threshold{Metric: metric, Aggregate: agg, Operator: op, Value: value, Raw: s}, nil
}

// Set is an ordered list of thresholds checked together.
type Set []Threshold

// ParseMultiple parses every entry and reports all bad entries at once,
// each prefixed with its index.
func ParseMultiple(entries []string) (Set, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	set := make(Set, 0, len(entries))
	var errs []error
	for i, raw := range entries {
		t, err := Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("threshold[%d]: %w", i, err))
			continue
		}
		set = append(set, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

// Evaluate checks each threshold against stats, in order. An empty set
// yields nil.
func (s Set) Evaluate(stats metrics.Stats) []Result {
	if len(s) == 0 {
		return nil
	}
	out := make([]Result, len(s))
	for i, t := range s {
		out[i] = check(t, stats)
	}
	return out
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	return !slices.ContainsFunc(results, func(r Result) bool { return !r.Pass })
}

func check(t Threshold, stats metrics.Stats) Result {
	res := Result{Threshold: t, Expr: t.Raw}
	get, ok := extractors[t.Metric][t.Aggregate]
	if !ok {
		res.Message = fmt.Sprintf("error: %s has no aggregate %q", t.Metric, t.Aggregate)
		return res
	}
	res.Actual = get(stats)
	res.Pass = t.Operator.Holds(res.Actual, t.Value)
	mark := "✗"
	if res.Pass {
		mark = "✓"
	}
	res.Message = fmt.Sprintf("%s %s: %.2f %s %.2f", mark, t.Raw, res.Actual, t.Operator, t.Value)
	return res
}

func keyList[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
