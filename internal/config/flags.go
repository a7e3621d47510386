package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crankbench",
		Short:         "Benchmark concurrency patterns over CPU, file and network workloads",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Scenario flags
	flags.StringP("scenario", "s", DefaultScenario, "Scenarios to run, comma-separated: sync, async, parallel, fileRead, fileReadProgress, bitcoin, primes, primesParallel, or all")
	flags.IntP("tasks", "n", DefaultTasks, "Number of iterations or concurrent units")
	flags.IntP("work-size", "w", DefaultWorkSize, "Factorial size or prime search upper bound")
	flags.String("data-dir", DefaultDataDir, "Directory of *.txt files for the file scenarios")
	flags.Int("chunk-size", DefaultChunkSize, "Buffer size in bytes for chunked file reads")
	flags.Int("workers", 0, "Worker pool size (0 means GOMAXPROCS)")

	// Network flags
	flags.String("quote-url", "", "Quote endpoint for the bitcoin scenario (defaults to CoinGecko)")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.Int("max-in-flight", DefaultMaxInFlight, "Maximum concurrent quote requests")
	flags.Int("attempts", DefaultAttempts, "Total attempts per quote request, including the first")
	flags.Duration("retry-delay", DefaultRetryDelay, "Delay before the first retry")
	flags.Float64("retry-multiplier", DefaultMultiplier, "Backoff growth factor between retries")
	flags.Float64("rate", 0, "Quote requests per second limit (0 means unlimited)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing requests (uniform or poisson)")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("yaml-output", false, "Emit YAML formatted output")
	flags.Bool("show-records", true, "Print the per-unit record table")
	flags.Bool("progress", true, "Show a progress bar while a scenario runs")
	flags.Bool("log-errors", false, "Log each failed quote attempt to stderr")
	flags.StringSlice("threshold", nil, "Pass/fail thresholds (repeatable, e.g., 'elapsed:p95 < 50')")
	flags.String("lock-file", "", "Lock file guarding against concurrent benchmark runs (default: <tmp>/crankbench.lock)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("tracing-service-name", "", "Service name reported in traces")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("scenario") {
		val, err := fs.GetString("scenario")
		if err != nil {
			return err
		}
		cfg.Scenario = strings.TrimSpace(val)
	}
	if fs.Changed("tasks") {
		val, err := fs.GetInt("tasks")
		if err != nil {
			return err
		}
		cfg.Tasks = val
	}
	if fs.Changed("work-size") {
		val, err := fs.GetInt("work-size")
		if err != nil {
			return err
		}
		cfg.WorkSize = val
	}
	if fs.Changed("data-dir") {
		val, err := fs.GetString("data-dir")
		if err != nil {
			return err
		}
		cfg.DataDir = strings.TrimSpace(val)
	}
	if fs.Changed("chunk-size") {
		val, err := fs.GetInt("chunk-size")
		if err != nil {
			return err
		}
		cfg.ChunkSize = val
	}
	if fs.Changed("workers") {
		val, err := fs.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = val
	}
	if fs.Changed("quote-url") {
		val, err := fs.GetString("quote-url")
		if err != nil {
			return err
		}
		cfg.QuoteURL = strings.TrimSpace(val)
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("max-in-flight") {
		val, err := fs.GetInt("max-in-flight")
		if err != nil {
			return err
		}
		cfg.MaxInFlight = val
	}
	if fs.Changed("attempts") {
		val, err := fs.GetInt("attempts")
		if err != nil {
			return err
		}
		cfg.Attempts = val
	}
	if fs.Changed("retry-delay") {
		val, err := fs.GetDuration("retry-delay")
		if err != nil {
			return err
		}
		cfg.RetryDelay = val
	}
	if fs.Changed("retry-multiplier") {
		val, err := fs.GetFloat64("retry-multiplier")
		if err != nil {
			return err
		}
		cfg.RetryMultiplier = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("yaml-output") {
		val, err := fs.GetBool("yaml-output")
		if err != nil {
			return err
		}
		cfg.YAMLOutput = val
	}
	if fs.Changed("show-records") {
		val, err := fs.GetBool("show-records")
		if err != nil {
			return err
		}
		cfg.ShowRecords = val
	}
	if fs.Changed("progress") {
		val, err := fs.GetBool("progress")
		if err != nil {
			return err
		}
		cfg.Progress = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = strings.TrimSpace(val)
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	return nil
}
