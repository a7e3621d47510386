package runner

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ArrivalModel selects how paced quote fetches are spread over time.
type ArrivalModel string

const (
	// ArrivalModelUniform admits fetches at evenly spaced instants.
	ArrivalModelUniform ArrivalModel = "uniform"
	// ArrivalModelPoisson draws exponential gaps between fetches.
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// pacer blocks until the next fetch may be admitted. A nil pacer admits
// immediately.
type pacer func(ctx context.Context) error

func (p pacer) wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p(ctx)
}

func newPacer(opt LimiterOptions) pacer {
	if opt.RatePerSecond <= 0 {
		return nil
	}
	if opt.ArrivalModel == ArrivalModelPoisson {
		draw := opt.PoissonSampler
		if draw == nil {
			draw = seededExpSampler(opt.RandomSeed)
		}
		return poissonPacer(opt.RatePerSecond, draw)
	}
	return tokenPacer(rate.NewLimiter(rate.Limit(opt.RatePerSecond), burstFor(opt.RatePerSecond)))
}

// burstFor allows one second's worth of fetches, and at least one.
func burstFor(perSecond float64) int {
	return max(1, int(math.Ceil(perSecond)))
}

func tokenPacer(lim *rate.Limiter) pacer {
	return func(ctx context.Context) error {
		return lim.Wait(ctx)
	}
}

func poissonPacer(perSecond float64, draw func() float64) pacer {
	return func(ctx context.Context) error {
		gap := exponentialGap(perSecond, draw())
		if gap <= 0 {
			return nil
		}
		t := time.NewTimer(gap)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// exponentialGap scales a unit-mean exponential sample to the mean gap
// 1/perSecond, saturating at the largest representable duration.
func exponentialGap(perSecond, sample float64) time.Duration {
	if perSecond <= 0 {
		return 0
	}
	ns := sample * float64(time.Second) / perSecond
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// seededExpSampler is safe for concurrent use; the bitcoin units draw from it
// in parallel.
func seededExpSampler(seed int64) func() float64 {
	src := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return src.ExpFloat64()
	}
}
