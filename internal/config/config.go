package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultScenario    = "sync"
	DefaultTasks       = 5
	DefaultWorkSize    = 10000
	DefaultDataDir     = "data"
	DefaultTimeout     = 10 * time.Second
	DefaultMaxInFlight = 5
	DefaultAttempts    = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMultiplier  = 2.0
	DefaultChunkSize   = 4096
)

// ScenarioAll runs every scenario in turn.
const ScenarioAll = "all"

type Config struct {
	Scenario        string        `mapstructure:"scenario"`
	Tasks           int           `mapstructure:"tasks"`
	WorkSize        int           `mapstructure:"work_size"`
	DataDir         string        `mapstructure:"data_dir"`
	QuoteURL        string        `mapstructure:"quote_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxInFlight     int           `mapstructure:"max_in_flight"`
	Attempts        int           `mapstructure:"attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
	Rate            float64       `mapstructure:"rate"`
	Arrival         ArrivalConfig `mapstructure:"arrival"`
	ChunkSize       int           `mapstructure:"chunk_size"`
	Workers         int           `mapstructure:"workers"`
	JSONOutput      bool          `mapstructure:"json_output"`
	YAMLOutput      bool          `mapstructure:"yaml_output"`
	ShowRecords     bool          `mapstructure:"show_records"`
	Progress        bool          `mapstructure:"progress"`
	LogErrors       bool          `mapstructure:"log_errors"`
	Thresholds      []string      `mapstructure:"thresholds"`
	LockFile        string        `mapstructure:"lock_file"`
	ConfigFile      string        `mapstructure:"-"`
	Tracing         TracingConfig `mapstructure:"tracing"`
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector address (host:port)
	Protocol    string  `mapstructure:"protocol"`     // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`     // disable TLS to the collector
	ServiceName string  `mapstructure:"service_name"` // defaults to OTEL_SERVICE_NAME or "crankbench"
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0 - 1.0
	Propagate   *bool   `mapstructure:"propagate"`    // inject W3C headers into quote requests (defaults to Enabled)
}

// Enabled reports whether an exporter endpoint is configured, either here or
// through OTEL_EXPORTER_OTLP_ENDPOINT.
func (t TracingConfig) Enabled() bool {
	if strings.TrimSpace(t.Endpoint) != "" {
		return true
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// ShouldPropagate reports whether trace context should be injected into outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.Scenario) == "" {
		issues = append(issues, "scenario is required (use --help for usage information)")
	}
	if c.Tasks < 1 {
		issues = append(issues, "tasks must be >= 1")
	}
	if c.WorkSize < 1 {
		issues = append(issues, "work-size must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.MaxInFlight < 1 {
		issues = append(issues, "max-in-flight must be >= 1")
	}
	if c.Attempts < 1 {
		issues = append(issues, "attempts must be >= 1")
	}
	if c.RetryDelay < 0 {
		issues = append(issues, "retry-delay must be >= 0")
	}
	if c.RetryMultiplier < 1 {
		issues = append(issues, "retry-multiplier must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.ChunkSize < 1 {
		issues = append(issues, "chunk-size must be >= 1")
	}
	if c.Workers < 0 {
		issues = append(issues, "workers must be >= 0")
	}
	if c.JSONOutput && c.YAMLOutput {
		issues = append(issues, "json-output and yaml-output are mutually exclusive")
	}

	issues = append(issues, validateArrivalConfig(c.Arrival)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	// Public quote APIs throttle aggressively; more than a handful of
	// concurrent calls mostly measures HTTP 429 responses.
	if c.MaxInFlight > DefaultMaxInFlight {
		warnings = append(warnings, fmt.Sprintf("WARNING: max-in-flight %d exceeds %d. Public quote endpoints may start rejecting requests.", c.MaxInFlight, DefaultMaxInFlight))
	}
	if c.Tracing.Enabled() && c.Tracing.Insecure {
		warnings = append(warnings, "WARNING: tracing export runs without TLS (insecure: true).")
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported (use grpc or http)", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample-rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
