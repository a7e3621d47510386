// Package workload holds the placeholder units of work the harness measures.
//
// The functions here are pure and share no state: CPU burns ([BurnFactorials],
// [Factorial], [CountPrimes]), range partitioning for parallel searches
// ([Partition]) and plain file reads ([ListTextFiles], [ReadFile],
// [ReadFileChunked]). Scheduling, timing and load sampling live in the runner.
package workload
