package runner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight caps concurrent quote fetches.
const DefaultMaxInFlight = 5

// LimiterOptions configure a Limiter.
type LimiterOptions struct {
	Capacity       int          // max concurrent holders (<= 0 means DefaultMaxInFlight)
	RatePerSecond  float64      // admissions per second (0 means unpaced)
	ArrivalModel   ArrivalModel // pacing model when RatePerSecond > 0
	RandomSeed     int64
	PoissonSampler func() float64 // optional injection for tests
}

// Limiter is the admission gate for network calls. Every successful Acquire
// must be paired with exactly one Release, on the failure path too.
type Limiter struct {
	sem      *semaphore.Weighted
	capacity int
	pacer    pacer
	inFlight atomic.Int64
	peak     atomic.Int64
}

func NewLimiter(opt LimiterOptions) *Limiter {
	if opt.Capacity <= 0 {
		opt.Capacity = DefaultMaxInFlight
	}
	return &Limiter{
		sem:      semaphore.NewWeighted(int64(opt.Capacity)),
		capacity: opt.Capacity,
		pacer:    newPacer(opt),
	}
}

// Acquire waits for pacing, then for a free slot. On error no slot is held.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.pacer.wait(ctx); err != nil {
		return err
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	cur := l.inFlight.Add(1)
	for {
		peak := l.peak.Load()
		if cur <= peak || l.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	return nil
}

// Release frees a slot. Releasing more than was acquired panics.
func (l *Limiter) Release() {
	l.inFlight.Add(-1)
	l.sem.Release(1)
}

// Capacity returns the maximum number of concurrent holders.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// InFlight returns the number of current holders.
func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}

// Peak returns the highest number of simultaneous holders seen.
func (l *Limiter) Peak() int {
	return int(l.peak.Load())
}

// ResetPeak clears the peak counter; called at the start of each run.
func (l *Limiter) ResetPeak() {
	l.peak.Store(l.inFlight.Load())
}
