package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestValueConverters(t *testing.T) {
	str := func(v interface{}) (interface{}, error) { return asString(v) }
	num := func(v interface{}) (interface{}, error) { return asInt(v) }
	flt := func(v interface{}) (interface{}, error) { return asFloat64(v) }
	boo := func(v interface{}) (interface{}, error) { return asBool(v) }
	dur := func(v interface{}) (interface{}, error) { return asDuration(v) }

	tests := []struct {
		name    string
		conv    func(interface{}) (interface{}, error)
		in      interface{}
		want    interface{}
		wantErr bool
	}{
		{"string from bytes", str, []byte("data"), "data", false},
		{"string from int", str, 42, "42", false},
		{"string from nil", str, nil, "", false},
		{"int from padded string", num, " 12 ", 12, false},
		{"int from float", num, 8.0, 8, false},
		{"int from blank", num, "  ", 0, false},
		{"int from word", num, "five", 0, true},
		{"float from string", flt, "1.5", 1.5, false},
		{"float from int", flt, 2, 2.0, false},
		{"bool from 1", boo, "1", true, false},
		{"bool from FALSE", boo, "FALSE", false, false},
		{"bool from nil", boo, nil, false, false},
		{"bool from word", boo, "maybe", false, true},
		{"duration string", dur, "750ms", 750 * time.Millisecond, false},
		{"duration bare seconds", dur, 3, 3 * time.Second, false},
		{"duration passthrough", dur, time.Minute, time.Minute, false},
		{"duration blank", dur, " ", time.Duration(0), false},
		{"duration junk", dur, "later", time.Duration(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.conv(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	got, err := asStringSlice("elapsed:p95 < 50")
	if err != nil || len(got) != 1 || got[0] != "elapsed:p95 < 50" {
		t.Errorf("single string = %v, %v; want one untouched element", got, err)
	}
	got, err = asStringSlice([]interface{}{"a", "b"})
	if err != nil || len(got) != 2 {
		t.Errorf("list = %v, %v", got, err)
	}
	if got, err := asStringSlice(nil); err != nil || got != nil {
		t.Errorf("nil = %v, %v", got, err)
	}
}

func TestToStringKeyMap(t *testing.T) {
	got, err := toStringKeyMap(map[interface{}]interface{}{" Model ": "poisson"})
	if err != nil {
		t.Fatalf("toStringKeyMap() error = %v", err)
	}
	if got["model"] != "poisson" {
		t.Errorf("keys should be trimmed and lowered, got %v", got)
	}
	if _, err := toStringKeyMap("uniform"); err == nil {
		t.Error("expected error for a non-map value")
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := Default()
	settings := map[string]interface{}{
		"scenario":         "fileReadProgress",
		"tasks":            "7",
		"chunk-size":       1024,
		"retry_multiplier": 1.5,
		"log_errors":       "true",
		"thresholds":       "elapsed:max < 100",
		"arrival": map[interface{}]interface{}{
			"model": "Poisson",
		},
		"tracing": map[string]interface{}{
			"Service_Name": "bench-ci",
			"protocol":     "HTTP",
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.Scenario != "fileReadProgress" {
		t.Errorf("Scenario = %q, want fileReadProgress", cfg.Scenario)
	}
	if cfg.Tasks != 7 {
		t.Errorf("Tasks = %d, want 7", cfg.Tasks)
	}
	if cfg.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d, want 1024", cfg.ChunkSize)
	}
	if cfg.RetryMultiplier != 1.5 {
		t.Errorf("RetryMultiplier = %g, want 1.5", cfg.RetryMultiplier)
	}
	if !cfg.LogErrors {
		t.Errorf("LogErrors = false, want true")
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "elapsed:max < 100" {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
	if cfg.Arrival.Model != ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
	if cfg.Tracing.ServiceName != "bench-ci" || cfg.Tracing.Protocol != "http" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.WorkSize != DefaultWorkSize {
		t.Errorf("WorkSize = %d, untouched keys should keep defaults", cfg.WorkSize)
	}
}

func TestApplyConfigSettingsErrors(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"tasks":   {"tasks": "many"},
		"timeout": {"timeout": "soon"},
		"arrival": {"arrival": map[string]interface{}{"rate": 3}},
		"tracing": {"tracing": "on"},
	}
	for name, settings := range cases {
		t.Run(name, func(t *testing.T) {
			if err := applyConfigSettings(Default(), settings); err == nil {
				t.Fatalf("expected error for %v", settings)
			}
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := Default()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--tasks=11",
		"--scenario=parallel",
		"--retry-delay=2s",
		"--threshold=elapsed:p99 < 10",
		"--threshold=failures:rate < 0.1",
		"--tracing-sample-rate=0.25",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Tasks != 11 {
		t.Errorf("Tasks = %d, want 11", cfg.Tasks)
	}
	if cfg.Scenario != "parallel" {
		t.Errorf("Scenario = %q, want parallel", cfg.Scenario)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %s, want 2s", cfg.RetryDelay)
	}
	if len(cfg.Thresholds) != 2 {
		t.Errorf("Thresholds = %v, want 2 entries", cfg.Thresholds)
	}
	if cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing.SampleRate = %g, want 0.25", cfg.Tracing.SampleRate)
	}
	if cfg.WorkSize != DefaultWorkSize {
		t.Errorf("unchanged flags must not override, WorkSize = %d", cfg.WorkSize)
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--scenario=fileRead",
		"--data-dir= ./corpus ",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scenario != "fileRead" {
		t.Errorf("Scenario = %q, want fileRead", cfg.Scenario)
	}
	if cfg.DataDir != "./corpus" {
		t.Errorf("DataDir = %q, want ./corpus", cfg.DataDir)
	}
}

func TestParseArrival(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    ArrivalModel
		wantErr bool
	}{
		{"nil", nil, "", false},
		{"string", " Uniform ", ArrivalModelUniform, false},
		{"map", map[string]interface{}{"model": "poisson"}, ArrivalModelPoisson, false},
		{"map without model", map[string]interface{}{}, "", true},
		{"wrong type", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArrival(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArrival() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Model != tt.want {
				t.Errorf("parseArrival() = %q, want %q", got.Model, tt.want)
			}
		})
	}
}
