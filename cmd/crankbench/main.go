package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"go.opentelemetry.io/otel/attribute"

	"github.com/torosent/crankbench/internal/config"
	"github.com/torosent/crankbench/internal/httpclient"
	"github.com/torosent/crankbench/internal/metrics"
	"github.com/torosent/crankbench/internal/output"
	"github.com/torosent/crankbench/internal/pool"
	"github.com/torosent/crankbench/internal/quote"
	"github.com/torosent/crankbench/internal/runner"
	"github.com/torosent/crankbench/internal/threshold"
	"github.com/torosent/crankbench/internal/tracing"
)

const (
	progressInterval = 100 * time.Millisecond
	shutdownTimeout  = 5 * time.Second
	defaultLockName  = "crankbench.lock"
)

type failureLogger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	tally   *metrics.ErrorTally
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scenarios, err := resolveScenarios(cfg.Scenario)
	if err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	lock := flock.New(lockPath(cfg.LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("another benchmark run holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	workers := pool.New(cfg.Workers)
	tp, err := tracing.Init(ctx, cfg.Tracing, attribute.Int("crankbench.pool_size", workers.Size()))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		_ = tp.Shutdown(shutdownCtx)
	}()

	store := metrics.NewStore()
	quotes := quote.NewClient(cfg.QuoteURL, httpclient.NewClient(cfg.Timeout))
	quotes.Propagate = tp.ShouldPropagate()

	logger := &failureLogger{w: stderr, verbose: cfg.LogErrors, tally: metrics.NewErrorTally()}
	retry := newRetryPolicy(cfg)

	engine := runner.New(runner.Options{
		TaskCount: cfg.Tasks,
		WorkSize:  cfg.WorkSize,
		DataDir:   cfg.DataDir,
		ChunkSize: cfg.ChunkSize,
		Pool:      workers,
		Store:     store,
		Quotes:    quotes,
		Limiter: runner.LimiterOptions{
			Capacity:      cfg.MaxInFlight,
			RatePerSecond: cfg.Rate,
			ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		},
		Retry:         &retry,
		Tracer:        tp.Tracer(),
		FailureLogger: logger,
	})

	structured := cfg.JSONOutput || cfg.YAMLOutput
	reports := make([]output.Report, 0, len(scenarios))
	for _, s := range scenarios {
		logger.tally.Reset()

		var progress *output.ProgressReporter
		if cfg.Progress && !structured {
			if expected, err := engine.ExpectedRecords(s); err == nil && expected > 0 {
				progress = output.NewProgressReporter(store, expected, s.Label(), progressInterval, stderr)
				progress.Start()
			}
		}

		res, err := engine.RunScenario(ctx, s)
		if progress != nil {
			progress.Stop()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}

		rep := output.NewReport(res, engine.Snapshot(), engine.Prices(), workers.Size())
		rep.Errors = logger.tally.Breakdown()
		rep.Thresholds = thresholds.Evaluate(rep.Stats)
		if !structured {
			output.PrintReport(stdout, rep, cfg.ShowRecords)
		}
		reports = append(reports, rep)
	}

	switch {
	case cfg.JSONOutput:
		if err := output.PrintJSONReport(stdout, reports); err != nil {
			return err
		}
	case cfg.YAMLOutput:
		if err := output.PrintYAMLReport(stdout, reports); err != nil {
			return err
		}
	case len(reports) > 1:
		if err := output.PrintComparison(stdout, reports); err != nil {
			return err
		}
	}

	failed := 0
	for _, rep := range reports {
		for _, res := range rep.Thresholds {
			if !res.Pass {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d threshold(s) failed", failed)
	}
	return nil
}

// resolveScenarios accepts "all", a single scenario, or a comma-separated list.
func resolveScenarios(value string) ([]runner.Scenario, error) {
	if strings.EqualFold(strings.TrimSpace(value), config.ScenarioAll) {
		return runner.AllScenarios(), nil
	}
	var out []runner.Scenario
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := runner.ParseScenario(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario selected")
	}
	return out, nil
}

func lockPath(configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return filepath.Join(os.TempDir(), defaultLockName)
}

func newRetryPolicy(cfg *config.Config) runner.RetryPolicy {
	return runner.RetryPolicy{
		MaxAttempts: cfg.Attempts,
		BaseDelay:   cfg.RetryDelay,
		Multiplier:  cfg.RetryMultiplier,
		ShouldRetry: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

func (l *failureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.tally.Record(err)
	if !l.verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[crankbench] quote fetch failed: %v\n", err)
}
