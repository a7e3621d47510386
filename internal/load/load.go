// Package load estimates worker-pool utilization from point-in-time occupancy samples.
//
// Samples are racy readings of a shared pool: every in-flight unit contributes to the
// same counters, so an estimate is a heuristic for the window around one unit and never
// a precise per-unit measurement. Callers should only rely on estimates being in [0,100].
package load

// Occupancy is an instantaneous reading of a worker pool.
type Occupancy struct {
	Available int // idle workers at the instant of the sample
	PoolSize  int
}

// Busy returns the number of occupied workers, clamped to [0, PoolSize].
func (o Occupancy) Busy() int {
	busy := o.PoolSize - o.Available
	if busy < 0 {
		return 0
	}
	if busy > o.PoolSize {
		return o.PoolSize
	}
	return busy
}

// Sampler reads the current occupancy of a worker pool.
type Sampler interface {
	Sample() Occupancy
}

// Single estimates utilization from one sample taken after a unit ran.
func Single(after Occupancy) float64 {
	if after.PoolSize <= 0 {
		return 0
	}
	return clamp(float64(after.Busy()) * 100 / float64(after.PoolSize))
}

// Bracketed averages the occupancy sampled immediately before and after a unit.
func Bracketed(before, after Occupancy) float64 {
	size := after.PoolSize
	if size <= 0 {
		size = before.PoolSize
	}
	if size <= 0 {
		return 0
	}
	avg := float64(before.Busy()+after.Busy()) / 2
	return clamp(avg * 100 / float64(size))
}

// Fixed is a Sampler that always reports the same occupancy.
type Fixed Occupancy

func (f Fixed) Sample() Occupancy { return Occupancy(f) }

func clamp(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
