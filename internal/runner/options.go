package runner

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/crankbench/internal/load"
	"github.com/torosent/crankbench/internal/metrics"
	"github.com/torosent/crankbench/internal/pool"
	"github.com/torosent/crankbench/internal/workload"
)

const (
	DefaultTaskCount = 5
	DefaultWorkSize  = 10000
	DefaultDataDir   = "data"
)

// Options configure the Engine.
type Options struct {
	TaskCount     int              // iterations or concurrent units per run
	WorkSize      int              // factorial size or prime upper bound
	DataDir       string           // directory scanned for *.txt files
	ChunkSize     int              // buffer size for chunked reads
	Pool          *pool.WorkerPool // shared worker pool (nil means GOMAXPROCS slots)
	Sampler       load.Sampler     // occupancy source (nil means Pool)
	Store         *metrics.Store   // metrics sink (nil means a fresh store)
	Quotes        QuoteSource      // quote fetcher (required for the bitcoin scenario)
	Limiter       LimiterOptions   // admission control for network calls
	Retry         *RetryPolicy     // network retry policy (nil means DefaultRetryPolicy)
	Tracer        trace.Tracer     // span source (nil means no-op)
	FailureLogger FailureLogger    // optional; receives failed network attempts
}

func (o *Options) normalize() {
	if o.TaskCount == 0 {
		o.TaskCount = DefaultTaskCount
	}
	if o.WorkSize == 0 {
		o.WorkSize = DefaultWorkSize
	}
	if o.DataDir == "" {
		o.DataDir = DefaultDataDir
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = workload.DefaultChunkSize
	}
	if o.Pool == nil {
		o.Pool = pool.New(0)
	}
	if o.Sampler == nil {
		o.Sampler = o.Pool
	}
	if o.Store == nil {
		o.Store = metrics.NewStore()
	}
	if o.Limiter.Capacity <= 0 {
		o.Limiter.Capacity = DefaultMaxInFlight
	}
	if o.Limiter.RatePerSecond < 0 {
		o.Limiter.RatePerSecond = 0
	}
	if o.Limiter.ArrivalModel == "" {
		o.Limiter.ArrivalModel = ArrivalModelUniform
	}
	if o.Limiter.RandomSeed == 0 {
		o.Limiter.RandomSeed = time.Now().UnixNano()
	}
	if o.Retry == nil {
		p := DefaultRetryPolicy()
		o.Retry = &p
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("crankbench")
	}
}
