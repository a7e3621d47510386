// Package output renders scenario results as text tables, JSON or YAML, and
// shows live progress while a scenario runs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/torosent/crankbench/internal/metrics"
	"github.com/torosent/crankbench/internal/runner"
	"github.com/torosent/crankbench/internal/threshold"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// Report is the complete outcome of one scenario run.
type Report struct {
	RunID      string             `json:"run_id" yaml:"run_id"`
	Scenario   string             `json:"scenario" yaml:"scenario"`
	Label      string             `json:"label" yaml:"label"`
	TaskCount  int                `json:"task_count" yaml:"task_count"`
	WorkSize   int                `json:"work_size" yaml:"work_size"`
	BusySlots  int                `json:"busy_slots" yaml:"busy_slots"`
	InFlight   int                `json:"peak_in_flight,omitempty" yaml:"peak_in_flight,omitempty"`
	Stats      metrics.Stats      `json:"stats" yaml:"stats"`
	Errors     map[string]int     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Thresholds []threshold.Result `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Records    []metrics.Record   `json:"records,omitempty" yaml:"records,omitempty"`
}

// NewReport assembles a report from a finished run and the records it wrote.
func NewReport(res runner.Result, records []metrics.Record, prices []float64, poolSize int) Report {
	return Report{
		RunID:     res.RunID,
		Scenario:  res.Scenario.String(),
		Label:     res.Scenario.Label(),
		TaskCount: res.Config.TaskCount,
		WorkSize:  res.Config.WorkSize,
		BusySlots: res.BusySlots,
		InFlight:  res.PeakInFlight,
		Stats:     metrics.Summarize(records, prices, res.Duration, poolSize),
		Records:   records,
	}
}

// Passed reports whether every threshold of the report passed.
func (r Report) Passed() bool {
	return threshold.AllPassed(r.Thresholds)
}

// PrintReport outputs a human-readable summary of one scenario. The per-record
// table is included when showRecords is set.
func PrintReport(w io.Writer, r Report, showRecords bool) {
	stats := r.Stats
	_, _ = bold.Fprintf(w, "\n--- %s (%s) ---\n", r.Label, r.Scenario)
	fmt.Fprintf(w, "Run ID:            %s\n", r.RunID)
	fmt.Fprintf(w, "Tasks / Work Size: %d / %d\n", r.TaskCount, r.WorkSize)
	fmt.Fprintf(w, "Records:           %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	if stats.Failures > 0 {
		_, _ = red.Fprintf(w, "Failed:            %d\n", stats.Failures)
	} else {
		fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	}
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration.Round(time.Microsecond))
	fmt.Fprintf(w, "Units/sec:         %.2f\n", stats.UnitsPerSec)
	fmt.Fprintln(w, "\nElapsed per unit:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinElapsed)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxElapsed)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanElapsed)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Elapsed)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Elapsed)
	fmt.Fprintf(w, "  P95:             %s\n", stats.P95Elapsed)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Elapsed)
	fmt.Fprintln(w, "\nPool load:")
	fmt.Fprintf(w, "  Mean:            %.1f%%\n", stats.MeanLoad)
	fmt.Fprintf(w, "  Max:             %.1f%%\n", stats.MaxLoad)
	fmt.Fprintf(w, "  Peak workers:    %d of %d\n", stats.PeakWorkers, stats.PoolSize)
	fmt.Fprintf(w, "  Busy slots:      %d (observed)\n", r.BusySlots)
	if r.InFlight > 0 {
		fmt.Fprintf(w, "  Peak in-flight:  %d fetches\n", r.InFlight)
	}

	if p := stats.Prices; p != nil {
		fmt.Fprintln(w, "\nQuotes (USD):")
		fmt.Fprintf(w, "  Samples:         %d\n", p.Count)
		fmt.Fprintf(w, "  Min/Mean/Max:    %.2f / %.2f / %.2f\n", p.Min, p.Mean, p.Max)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(r.Errors))
		for name := range r.Errors {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if r.Errors[names[i]] != r.Errors[names[j]] {
				return r.Errors[names[i]] > r.Errors[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			_, _ = yellow.Fprintf(w, "  %s: %d\n", name, r.Errors[name])
		}
	}

	if len(r.Thresholds) > 0 {
		PrintThresholds(w, r.Thresholds)
	}

	if showRecords && len(r.Records) > 0 {
		fmt.Fprintln(w)
		if err := writeRecordTable(w, r.Records); err != nil {
			_, _ = red.Fprintf(w, "render records: %v\n", err)
		}
	}
}

// PrintThresholds writes one line per threshold result.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	fmt.Fprintln(w, "\nThresholds:")
	for _, res := range results {
		c := green
		if !res.Pass {
			c = red
		}
		_, _ = c.Fprintf(w, "  %s\n", res.Message)
	}
}

func writeRecordTable(w io.Writer, records []metrics.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Elapsed (ms)", "Load (%)", "Result")
	for _, rec := range records {
		if err := table.Append(
			strconv.Itoa(rec.Index),
			strconv.FormatFloat(rec.ElapsedMs, 'f', 3, 64),
			strconv.FormatFloat(rec.LoadPercent, 'f', 1, 64),
			rec.Result,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintComparison writes one row per scenario so several runs can be compared.
func PrintComparison(w io.Writer, reports []Report) error {
	if len(reports) == 0 {
		return nil
	}
	_, _ = bold.Fprintln(w, "\n--- Scenario Comparison ---")
	table := tablewriter.NewWriter(w)
	table.Header("Scenario", "Records", "Failed", "Duration", "Units/sec", "Mean (ms)", "P95 (ms)", "Max Load (%)")
	for _, r := range reports {
		s := r.Stats
		if err := table.Append(
			r.Label,
			strconv.FormatInt(s.Total, 10),
			strconv.FormatInt(s.Failures, 10),
			s.Duration.Round(time.Microsecond).String(),
			strconv.FormatFloat(s.UnitsPerSec, 'f', 2, 64),
			strconv.FormatFloat(s.MeanElapsedMs, 'f', 3, 64),
			strconv.FormatFloat(s.P95ElapsedMs, 'f', 3, 64),
			strconv.FormatFloat(s.MaxLoad, 'f', 1, 64),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, reports []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}
