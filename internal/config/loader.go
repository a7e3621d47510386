package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Default returns the configuration used when no file or flag overrides a value.
func Default() *Config {
	return &Config{
		Scenario:        DefaultScenario,
		Tasks:           DefaultTasks,
		WorkSize:        DefaultWorkSize,
		DataDir:         DefaultDataDir,
		Timeout:         DefaultTimeout,
		MaxInFlight:     DefaultMaxInFlight,
		Attempts:        DefaultAttempts,
		RetryDelay:      DefaultRetryDelay,
		RetryMultiplier: DefaultMultiplier,
		ChunkSize:       DefaultChunkSize,
		ShowRecords:     true,
		Progress:        true,
		Arrival:         ArrivalConfig{Model: ArrivalModelUniform},
		Tracing:         TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Flags override values read from the file named by --config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(extra, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Scenario = strings.TrimSpace(cfg.Scenario)
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "scenario"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
		cfg.Scenario = strings.TrimSpace(val)
	}

	intFields := []struct {
		keys []string
		dst  *int
	}{
		{[]string{"tasks", "task_count", "taskcount"}, &cfg.Tasks},
		{[]string{"work_size", "worksize", "work-size"}, &cfg.WorkSize},
		{[]string{"chunk_size", "chunksize", "chunk-size"}, &cfg.ChunkSize},
		{[]string{"workers"}, &cfg.Workers},
		{[]string{"max_in_flight", "maxinflight", "max-in-flight"}, &cfg.MaxInFlight},
		{[]string{"attempts", "max_attempts", "max-attempts"}, &cfg.Attempts},
	}
	for _, f := range intFields {
		if raw, ok := lookupSetting(settings, f.keys...); ok {
			val, err := asInt(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.keys[0], err)
			}
			*f.dst = val
		}
	}

	stringFields := []struct {
		keys []string
		dst  *string
	}{
		{[]string{"data_dir", "datadir", "data-dir"}, &cfg.DataDir},
		{[]string{"quote_url", "quoteurl", "quote-url"}, &cfg.QuoteURL},
		{[]string{"lock_file", "lockfile", "lock-file"}, &cfg.LockFile},
	}
	for _, f := range stringFields {
		if raw, ok := lookupSetting(settings, f.keys...); ok {
			val, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.keys[0], err)
			}
			*f.dst = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = val
	}
	if raw, ok := lookupSetting(settings, "retry_delay", "retrydelay", "retry-delay"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("retry_delay: %w", err)
		}
		cfg.RetryDelay = val
	}
	if raw, ok := lookupSetting(settings, "retry_multiplier", "retrymultiplier", "retry-multiplier"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("retry_multiplier: %w", err)
		}
		cfg.RetryMultiplier = val
	}
	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	boolFields := []struct {
		keys []string
		dst  *bool
	}{
		{[]string{"json_output", "jsonoutput", "json-output"}, &cfg.JSONOutput},
		{[]string{"yaml_output", "yamloutput", "yaml-output"}, &cfg.YAMLOutput},
		{[]string{"show_records", "showrecords", "show-records"}, &cfg.ShowRecords},
		{[]string{"progress"}, &cfg.Progress},
		{[]string{"log_errors", "logerrors", "log-errors"}, &cfg.LogErrors},
	}
	for _, f := range boolFields {
		if raw, ok := lookupSetting(settings, f.keys...); ok {
			val, err := asBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.keys[0], err)
			}
			*f.dst = val
		}
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = val
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arr, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arr.Model != "" {
			cfg.Arrival = arr
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{}, nil
	}
	switch v := value.(type) {
	case string:
		model := strings.ToLower(strings.TrimSpace(v))
		if model == "" {
			return ArrivalConfig{}, nil
		}
		return ArrivalConfig{Model: ArrivalModel(model)}, nil
	default:
		entry, err := toStringKeyMap(value)
		if err != nil {
			return ArrivalConfig{}, err
		}
		if raw, ok := lookupSetting(entry, "model"); ok {
			val, err := asString(raw)
			if err != nil {
				return ArrivalConfig{}, fmt.Errorf("model: %w", err)
			}
			return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(val)))}, nil
		}
		return ArrivalConfig{}, fmt.Errorf("model field is required")
	}
}

func applyTracingSettings(t *TracingConfig, value interface{}) error {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		t.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "service_name", "servicename", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		t.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "sample_rate", "samplerate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		t.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		t.Propagate = &val
	}
	return nil
}
