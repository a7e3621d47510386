package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/crankbench/internal/metrics"
	"github.com/torosent/crankbench/internal/quote"
	"github.com/torosent/crankbench/internal/tracing"
	"github.com/torosent/crankbench/internal/workload"
)

// QuoteSource fetches one price quote. Implementations must be safe for concurrent use.
type QuoteSource interface {
	Fetch(ctx context.Context) (quote.Quote, error)
}

// ScenarioConfig holds the parameters of a run.
type ScenarioConfig struct {
	TaskCount int
	WorkSize  int
}

// Validate reports non-positive parameters as a ConfigError.
func (c ScenarioConfig) Validate() error {
	if c.TaskCount <= 0 {
		return &ConfigError{Field: "task_count", Reason: "must be positive"}
	}
	if c.WorkSize <= 0 {
		return &ConfigError{Field: "work_size", Reason: "must be positive"}
	}
	return nil
}

// Result captures one scenario invocation.
type Result struct {
	RunID    string
	Scenario Scenario
	Config   ScenarioConfig
	Records  int
	Failures int
	Duration time.Duration
	// BusySlots is the most pool slots held at once during the run.
	BusySlots int
	// PeakInFlight is the most quote fetches admitted at once (bitcoin only).
	PeakInFlight int
}

// Engine runs scenarios against one metrics store. It is built once per
// benchmarking session; only one scenario may run at a time.
type Engine struct {
	opt     Options
	limiter *Limiter

	mu  sync.Mutex
	cfg ScenarioConfig

	running atomic.Bool
}

func New(opt Options) *Engine {
	opt.normalize()
	return &Engine{
		opt:     opt,
		limiter: NewLimiter(opt.Limiter),
		cfg:     ScenarioConfig{TaskCount: opt.TaskCount, WorkSize: opt.WorkSize},
	}
}

// Configure sets the parameters used by subsequent runs.
func (e *Engine) Configure(taskCount, workSize int) error {
	cfg := ScenarioConfig{TaskCount: taskCount, WorkSize: workSize}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// Config returns the current parameters.
func (e *Engine) Config() ScenarioConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Run resolves name with ParseScenario and runs it.
func (e *Engine) Run(ctx context.Context, name string) (Result, error) {
	s, err := ParseScenario(name)
	if err != nil {
		return Result{}, err
	}
	return e.RunScenario(ctx, s)
}

// RunScenario clears the store, runs s to completion and returns a summary.
// Records written before a fault stay in the store.
func (e *Engine) RunScenario(ctx context.Context, s Scenario) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer e.running.Store(false)

	cfg := e.Config()
	res := Result{Scenario: s, Config: cfg}
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	run := e.strategy(s)
	if run == nil {
		return res, &ConfigError{Field: "scenario", Reason: "unknown scenario " + `"` + string(s) + `"`}
	}

	res.RunID = ulid.Make().String()
	e.opt.Store.Clear()
	e.opt.Pool.ResetPeak()
	e.limiter.ResetPeak()

	ctx, span := tracing.StartScenarioSpan(ctx, e.opt.Tracer, string(s), res.RunID, cfg.TaskCount, cfg.WorkSize)
	start := time.Now()
	err := run(ctx, cfg)
	res.Duration = time.Since(start)
	res.BusySlots = e.opt.Pool.Peak()
	res.PeakInFlight = e.limiter.Peak()

	for _, r := range e.opt.Store.Results() {
		res.Records++
		if r == metrics.FailureToken {
			res.Failures++
		}
	}
	tracing.EndSpan(span, err,
		tracing.RecordsKey.Int(res.Records),
		tracing.FailuresKey.Int(res.Failures),
	)
	return res, err
}

func (e *Engine) strategy(s Scenario) func(context.Context, ScenarioConfig) error {
	switch s {
	case ScenarioSync:
		return e.runSync
	case ScenarioAsync:
		return e.runAsync
	case ScenarioParallel:
		return e.runParallel
	case ScenarioFileRead:
		return func(ctx context.Context, cfg ScenarioConfig) error {
			return e.runFiles(ctx, ScenarioFileRead, cfg)
		}
	case ScenarioFileReadProgress:
		return func(ctx context.Context, cfg ScenarioConfig) error {
			return e.runFiles(ctx, ScenarioFileReadProgress, cfg)
		}
	case ScenarioBitcoin:
		return e.runBitcoin
	case ScenarioPrimes:
		return e.runPrimes
	case ScenarioPrimesParallel:
		return e.runPrimesParallel
	default:
		return nil
	}
}

// ExpectedRecords returns how many records a run of s will write with the
// current parameters.
func (e *Engine) ExpectedRecords(s Scenario) (int, error) {
	cfg := e.Config()
	if s.ReadsFiles() {
		files, err := e.listFiles()
		if err != nil {
			return 0, err
		}
		return cfg.TaskCount * len(files), nil
	}
	return cfg.TaskCount, nil
}

func (e *Engine) listFiles() ([]string, error) {
	files, err := workload.ListTextFiles(e.opt.DataDir)
	if err != nil {
		return nil, &ConfigError{Field: "data_dir", Reason: "cannot enumerate text files", Err: err}
	}
	return files, nil
}

// ClearMetrics discards all records and price samples.
func (e *Engine) ClearMetrics() {
	e.opt.Store.Clear()
}

func (e *Engine) ExecutionTimes() []float64 {
	return e.opt.Store.ExecutionTimes()
}

func (e *Engine) ThreadLoads() []float64 {
	return e.opt.Store.ThreadLoads()
}

func (e *Engine) Results() []string {
	return e.opt.Store.Results()
}

func (e *Engine) Prices() []float64 {
	return e.opt.Store.Prices()
}

func (e *Engine) Snapshot() []metrics.Record {
	return e.opt.Store.Snapshot()
}

func (e *Engine) Limiter() *Limiter {
	return e.limiter
}
