package metrics

import (
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarizes the records of one scenario run.
type Stats struct {
	Total       int64         `json:"total" yaml:"total"`
	Successes   int64         `json:"successes" yaml:"successes"`
	Failures    int64         `json:"failures" yaml:"failures"`
	MinElapsed  time.Duration `json:"-" yaml:"-"`
	MaxElapsed  time.Duration `json:"-" yaml:"-"`
	MeanElapsed time.Duration `json:"-" yaml:"-"`
	P50Elapsed  time.Duration `json:"-" yaml:"-"`
	P90Elapsed  time.Duration `json:"-" yaml:"-"`
	P95Elapsed  time.Duration `json:"-" yaml:"-"`
	P99Elapsed  time.Duration `json:"-" yaml:"-"`
	Duration    time.Duration `json:"-" yaml:"-"`
	UnitsPerSec float64       `json:"units_per_sec" yaml:"units_per_sec"`

	MeanLoad    float64 `json:"mean_load_percent" yaml:"mean_load_percent"`
	MaxLoad     float64 `json:"max_load_percent" yaml:"max_load_percent"`
	PoolSize    int     `json:"pool_size" yaml:"pool_size"`
	PeakWorkers int     `json:"peak_workers" yaml:"peak_workers"`

	// JSON-friendly millisecond fields.
	MinElapsedMs  float64 `json:"min_elapsed_ms" yaml:"min_elapsed_ms"`
	MaxElapsedMs  float64 `json:"max_elapsed_ms" yaml:"max_elapsed_ms"`
	MeanElapsedMs float64 `json:"mean_elapsed_ms" yaml:"mean_elapsed_ms"`
	P50ElapsedMs  float64 `json:"p50_elapsed_ms" yaml:"p50_elapsed_ms"`
	P90ElapsedMs  float64 `json:"p90_elapsed_ms" yaml:"p90_elapsed_ms"`
	P95ElapsedMs  float64 `json:"p95_elapsed_ms" yaml:"p95_elapsed_ms"`
	P99ElapsedMs  float64 `json:"p99_elapsed_ms" yaml:"p99_elapsed_ms"`
	DurationMs    float64 `json:"duration_ms" yaml:"duration_ms"`

	Prices *PriceStats `json:"prices,omitempty" yaml:"prices,omitempty"`
}

// PriceStats summarizes the quote samples of a network run.
type PriceStats struct {
	Count int     `json:"count" yaml:"count"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

// Summarize computes aggregate statistics for a snapshot. elapsed is the wall-clock
// duration of the whole run and poolSize the number of workers the loads refer to.
func Summarize(records []Record, prices []float64, elapsed time.Duration, poolSize int) Stats {
	// Track elapsed times from 1µs up to one hour with 3 significant figures.
	hist := hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)

	stats := Stats{
		Total:    int64(len(records)),
		PoolSize: poolSize,
		Duration: elapsed,
	}

	var sum time.Duration
	var loadSum float64
	for i, r := range records {
		d := time.Duration(r.ElapsedMs * float64(time.Millisecond))
		us := d.Microseconds()
		if us < hist.LowestTrackableValue() {
			us = hist.LowestTrackableValue()
		}
		if us > hist.HighestTrackableValue() {
			us = hist.HighestTrackableValue()
		}
		_ = hist.RecordValue(us)

		sum += d
		if i == 0 || d < stats.MinElapsed {
			stats.MinElapsed = d
		}
		if d > stats.MaxElapsed {
			stats.MaxElapsed = d
		}

		loadSum += r.LoadPercent
		if r.LoadPercent > stats.MaxLoad {
			stats.MaxLoad = r.LoadPercent
		}

		if r.Result == FailureToken {
			stats.Failures++
		} else {
			stats.Successes++
		}
	}

	if stats.Total > 0 {
		stats.MeanElapsed = time.Duration(int64(sum) / stats.Total)
		stats.MeanLoad = loadSum / float64(stats.Total)
	}

	if hist.TotalCount() > 0 {
		stats.P50Elapsed = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Elapsed = time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P95Elapsed = time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Elapsed = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	}

	if poolSize > 0 {
		stats.PeakWorkers = int(math.Ceil(stats.MaxLoad * float64(poolSize) / 100))
	}

	stats.MinElapsedMs = toMs(stats.MinElapsed)
	stats.MaxElapsedMs = toMs(stats.MaxElapsed)
	stats.MeanElapsedMs = toMs(stats.MeanElapsed)
	stats.P50ElapsedMs = toMs(stats.P50Elapsed)
	stats.P90ElapsedMs = toMs(stats.P90Elapsed)
	stats.P95ElapsedMs = toMs(stats.P95Elapsed)
	stats.P99ElapsedMs = toMs(stats.P99Elapsed)
	stats.DurationMs = toMs(elapsed)
	if elapsed > 0 && stats.Total > 0 {
		stats.UnitsPerSec = float64(stats.Total) / elapsed.Seconds()
	}

	if len(prices) > 0 {
		ps := &PriceStats{Count: len(prices), Min: prices[0], Max: prices[0]}
		var total float64
		for _, p := range prices {
			total += p
			ps.Min = math.Min(ps.Min, p)
			ps.Max = math.Max(ps.Max, p)
		}
		ps.Mean = total / float64(len(prices))
		stats.Prices = ps
	}

	return stats
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
