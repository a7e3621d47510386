package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/torosent/crankbench/internal/load"
	"github.com/torosent/crankbench/internal/metrics"
	"github.com/torosent/crankbench/internal/quote"
	"github.com/torosent/crankbench/internal/tracing"
	"github.com/torosent/crankbench/internal/workload"
)

// runSync burns factorials back to back on a single worker.
func (e *Engine) runSync(ctx context.Context, cfg ScenarioConfig) error {
	return e.runSequential(ctx, ScenarioSync, cfg.TaskCount, func() (time.Duration, string) {
		start := time.Now()
		workload.BurnFactorials(cfg.WorkSize)
		elapsed := time.Since(start)
		return elapsed, workload.Factorial(cfg.WorkSize).String()
	})
}

// runPrimes searches [2, WorkSize] once per iteration on a single worker.
func (e *Engine) runPrimes(ctx context.Context, cfg ScenarioConfig) error {
	full := workload.Range{Start: 2, End: cfg.WorkSize}
	return e.runSequential(ctx, ScenarioPrimes, cfg.TaskCount, func() (time.Duration, string) {
		start := time.Now()
		count := workload.CountPrimes(full)
		return time.Since(start), strconv.Itoa(count)
	})
}

// runSequential holds one pool slot for the whole loop and samples load once
// after each unit. Records are appended in task order.
func (e *Engine) runSequential(ctx context.Context, s Scenario, n int, unit func() (time.Duration, string)) error {
	i := 0
	err := e.opt.Pool.Do(ctx, func() {
		for ; i < n; i++ {
			_, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(s), i)
			elapsed, result := unit()
			e.add(elapsed, load.Single(e.opt.Sampler.Sample()), result)
			tracing.EndSpan(span, nil)
		}
	})
	return unitErr(s, i, err)
}

// runAsync hands each burn to the pool and waits for it. The loop itself holds
// no worker, but every burn still occupies one for its whole duration, so the
// timings match runSync.
func (e *Engine) runAsync(ctx context.Context, cfg ScenarioConfig) error {
	for i := 0; i < cfg.TaskCount; i++ {
		_, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(ScenarioAsync), i)
		start := time.Now()
		err := e.opt.Pool.Do(ctx, func() {
			workload.BurnFactorials(cfg.WorkSize)
		})
		elapsed := time.Since(start)
		if err != nil {
			err = unitErr(ScenarioAsync, i, err)
			tracing.EndSpan(span, err)
			return err
		}
		fact := workload.Factorial(cfg.WorkSize)
		e.add(elapsed, load.Single(e.opt.Sampler.Sample()), fact.String())
		tracing.EndSpan(span, nil)
	}
	return nil
}

// runParallel fans out TaskCount burns, each holding its own worker.
func (e *Engine) runParallel(ctx context.Context, cfg ScenarioConfig) error {
	var g errgroup.Group
	for i := 0; i < cfg.TaskCount; i++ {
		i := i
		g.Go(func() error {
			_, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(ScenarioParallel), i)
			err := e.opt.Pool.Do(ctx, func() {
				before := e.opt.Sampler.Sample()
				start := time.Now()
				workload.BurnFactorials(cfg.WorkSize)
				elapsed := time.Since(start)
				after := e.opt.Sampler.Sample()
				fact := workload.Factorial(cfg.WorkSize)
				e.add(elapsed, load.Bracketed(before, after), fact.String())
			})
			err = unitErr(ScenarioParallel, i, err)
			tracing.EndSpan(span, err)
			return err
		})
	}
	return g.Wait()
}

// runPrimesParallel searches TaskCount contiguous partitions of [2, WorkSize]
// concurrently, one record per partition.
func (e *Engine) runPrimesParallel(ctx context.Context, cfg ScenarioConfig) error {
	if cfg.WorkSize-1 < cfg.TaskCount {
		return &ConfigError{
			Field:  "work_size",
			Reason: fmt.Sprintf("range [2, %d] cannot be split into %d partitions", cfg.WorkSize, cfg.TaskCount),
		}
	}
	ranges, err := workload.Partition(2, cfg.WorkSize, cfg.TaskCount)
	if err != nil {
		return &ConfigError{Field: "work_size", Reason: "cannot partition range", Err: err}
	}

	var g errgroup.Group
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() (err error) {
			defer recoverUnit(ScenarioPrimesParallel, i, &err)
			before := e.opt.Sampler.Sample()
			_, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(ScenarioPrimesParallel), i)
			var count int
			err = e.opt.Pool.Do(ctx, func() {
				start := time.Now()
				count = workload.CountPrimes(r)
				elapsed := time.Since(start)
				after := e.opt.Sampler.Sample()
				e.add(elapsed, load.Bracketed(before, after), strconv.Itoa(count))
			})
			err = unitErr(ScenarioPrimesParallel, i, err)
			tracing.EndSpan(span, err,
				tracing.RangeStartKey.Int(r.Start),
				tracing.RangeEndKey.Int(r.End),
				tracing.PrimesKey.Int(count),
			)
			return err
		})
	}
	return g.Wait()
}

// runFiles reads every text file TaskCount times, all reads in flight at once.
// Reads wait outside the pool; load is sampled when a read starts and when it
// completes. A failed read never stops its siblings.
func (e *Engine) runFiles(ctx context.Context, s Scenario, cfg ScenarioConfig) error {
	files, err := e.listFiles()
	if err != nil {
		return err
	}

	var g errgroup.Group
	unit := 0
	for rep := 0; rep < cfg.TaskCount; rep++ {
		for _, path := range files {
			path := path
			id := unit
			unit++
			g.Go(func() (err error) {
				defer recoverUnit(s, id, &err)
				before := e.opt.Sampler.Sample()
				_, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(s), id)

				start := time.Now()
				n, err := e.readFile(ctx, s, path)
				elapsed := time.Since(start)
				if err != nil {
					err = &UnitError{Scenario: s, Unit: id, Err: err}
					tracing.EndSpan(span, err)
					return err
				}

				after := e.opt.Sampler.Sample()
				e.add(elapsed, load.Bracketed(before, after), fmt.Sprintf("%s: %d bytes", filepath.Base(path), n))
				tracing.EndSpan(span, nil, tracing.BytesKey.Int64(n))
				return nil
			})
		}
	}
	return g.Wait()
}

func (e *Engine) readFile(ctx context.Context, s Scenario, path string) (int64, error) {
	if s == ScenarioFileReadProgress {
		return workload.ReadFileChunked(ctx, path, e.opt.ChunkSize)
	}
	return workload.ReadFile(path)
}

// runBitcoin issues TaskCount quote fetches through the limiter. Failures are
// absorbed: a unit that exhausts its retries records FailureToken and no price.
func (e *Engine) runBitcoin(ctx context.Context, cfg ScenarioConfig) error {
	if e.opt.Quotes == nil {
		return &ConfigError{Field: "quotes", Reason: "no quote source configured"}
	}
	var g errgroup.Group
	for i := 0; i < cfg.TaskCount; i++ {
		i := i
		g.Go(func() error {
			e.fetchQuote(ctx, i)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) fetchQuote(ctx context.Context, unit int) {
	ctx, span := tracing.StartUnitSpan(ctx, e.opt.Tracer, string(ScenarioBitcoin), unit)

	if err := e.limiter.Acquire(ctx); err != nil {
		e.logFailure(err)
		e.add(0, load.Single(e.opt.Sampler.Sample()), metrics.FailureToken)
		tracing.EndSpan(span, err)
		return
	}
	defer e.limiter.Release()

	before := e.opt.Sampler.Sample()
	start := time.Now()
	q, err := Retry(ctx, *e.opt.Retry, func(ctx context.Context) (quote.Quote, error) {
		q, err := e.fetchOnce(ctx)
		if err != nil {
			e.logFailure(err)
		}
		return q, err
	})
	elapsed := time.Since(start)
	pct := load.Bracketed(before, e.opt.Sampler.Sample())

	if err != nil {
		e.add(elapsed, pct, metrics.FailureToken)
		tracing.EndSpan(span, err)
		return
	}
	e.opt.Store.AddPrice(q.USD)
	e.add(elapsed, pct, q.String())
	tracing.EndSpan(span, nil, tracing.PriceUSDKey.Float64(q.USD))
}

// fetchOnce turns a panicking quote source into a failed attempt.
func (e *Engine) fetchOnce(ctx context.Context) (q quote.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("quote source panic: %v", r)
		}
	}()
	return e.opt.Quotes.Fetch(ctx)
}

func (e *Engine) logFailure(err error) {
	if e.opt.FailureLogger != nil {
		e.opt.FailureLogger.LogFailure(err)
	}
}

func (e *Engine) add(elapsed time.Duration, loadPercent float64, result string) {
	e.opt.Store.AddRecord(float64(elapsed)/float64(time.Millisecond), loadPercent, result)
}

// unitErr wraps a unit fault. Context errors pass through unchanged.
func unitErr(s Scenario, unit int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &UnitError{Scenario: s, Unit: unit, Err: err}
}

func recoverUnit(s Scenario, unit int, err *error) {
	if r := recover(); r != nil {
		*err = &UnitError{Scenario: s, Unit: unit, Err: fmt.Errorf("panic: %v", r)}
	}
}
