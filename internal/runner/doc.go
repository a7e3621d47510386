// Package runner provides the scenario execution engine for crankbench.
//
// An [Engine] runs one of eight execution strategies over a batch of work units
// and writes one metrics record per unit into its [metrics.Store]:
//
//   - sync, primes: a sequential loop on a single worker
//   - async: the same loop with every unit handed to the worker pool and awaited
//   - parallel, primesParallel: a fan-out joined by an errgroup barrier
//   - fileRead, fileReadProgress: one concurrent read per text file and repetition
//   - bitcoin: concurrent quote fetches behind a [Limiter] with retry and backoff
//
// # Basic Usage
//
//	eng := runner.New(runner.Options{
//		Pool:   pool.New(0),
//		Quotes: quote.NewClient("", nil),
//	})
//	if err := eng.Configure(5, 10000); err != nil {
//		return err
//	}
//	res, err := eng.Run(ctx, "parallel")
//	times := eng.ExecutionTimes()
//
// # Ordering
//
// Sequential strategies append records in task order. Every other strategy
// appends in completion order, so a record index says nothing about which task
// produced it.
//
// # Speedup
//
// sync and async take the same wall-clock time: async awaits each unit before
// dispatching the next, so no two units overlap. Only parallel and
// primesParallel spread units across workers.
//
// # Retry
//
// [Retry] is a generic attempt-with-retry wrapper driven by a [RetryPolicy].
// [DefaultRetryPolicy] makes three attempts in total, waiting 0.5s and 1s in
// between; every error except cancellation is retried.
//
// # Error Handling
//
// Bad parameters, unknown scenarios and a missing data directory are reported
// as [ConfigError] before any unit starts. CPU and file faults surface as
// [UnitError] after all sibling units have finished. Network faults never
// escape the bitcoin scenario: a unit that runs out of retries records
// [metrics.FailureToken].
package runner
