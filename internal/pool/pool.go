package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/torosent/crankbench/internal/load"
)

// WorkerPool is a fixed set of worker slots shared by every scenario of a session.
// A unit holds a slot for as long as it occupies a worker; I/O waits happen outside
// the pool so they never hold one.
type WorkerPool struct {
	slots chan struct{} // a token in the channel is an occupied slot
	size  int
	peak  int64
}

// New creates a pool with the given number of slots.
// A size <= 0 sizes the pool to runtime.GOMAXPROCS(0).
func New(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{
		slots: make(chan struct{}, size),
		size:  size,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *WorkerPool) Acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case p.slots <- struct{}{}:
		p.notePeak()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (p *WorkerPool) Release() {
	select {
	case <-p.slots:
	default:
		panic("pool: Release without matching Acquire")
	}
}

// Do runs fn while holding a slot. A panic inside fn is returned as an error
// and the slot is always released.
func (p *WorkerPool) Do(ctx context.Context, fn func()) (err error) {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()
	fn()
	return nil
}

// Size returns the number of slots.
func (p *WorkerPool) Size() int {
	return p.size
}

// Available returns the number of idle slots. The value is stale as soon as it is read.
func (p *WorkerPool) Available() int {
	return p.size - len(p.slots)
}

// Peak returns the highest number of simultaneously occupied slots seen so far.
func (p *WorkerPool) Peak() int {
	return int(atomic.LoadInt64(&p.peak))
}

// ResetPeak restarts peak tracking from the current occupancy.
func (p *WorkerPool) ResetPeak() {
	atomic.StoreInt64(&p.peak, int64(len(p.slots)))
}

// Sample implements load.Sampler.
func (p *WorkerPool) Sample() load.Occupancy {
	return load.Occupancy{Available: p.Available(), PoolSize: p.size}
}

func (p *WorkerPool) notePeak() {
	busy := int64(len(p.slots))
	for {
		cur := atomic.LoadInt64(&p.peak)
		if busy <= cur || atomic.CompareAndSwapInt64(&p.peak, cur, busy) {
			return
		}
	}
}
