// Package metrics stores and summarizes per-unit benchmark measurements.
//
// # Store
//
// [Store] is the single sink for one benchmarking session. Every executed unit
// appends exactly one [Record] (elapsed time, load estimate, result token):
//
//	store := metrics.NewStore()
//	store.Clear() // before each scenario
//	store.AddRecord(elapsedMs, loadPercent, "120")
//	records := store.Snapshot()
//
// Appends are serialized by a mutex; the work that produced a record is never
// performed under the lock. Record indexes follow write order, so for concurrent
// scenarios they reflect completion order and say nothing about task identity.
//
// The network scenario also appends quote samples with [Store.AddPrice].
//
// # Statistics
//
// [Summarize] reduces a snapshot to a [Stats] value with elapsed-time
// percentiles (P50, P90, P95, P99) computed through an HDR histogram, mean and
// maximum load, and the peak number of workers implied by the maximum load.
//
// # Failures
//
// [ErrorTally] groups failed attempts into report buckets chosen by
// [Categorize]. Error types can pick their own bucket by implementing
// [Categorizer].
package metrics
