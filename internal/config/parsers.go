// Package config loads crankbench settings from flags and JSON or YAML files.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// lookupSetting returns the first candidate key present in settings. viper
// lowercases keys, so each candidate is also tried in lower case.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		if val, ok := settings[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

func asString(value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}
	if s, err := cast.ToStringE(value); err == nil {
		return s, nil
	}
	return fmt.Sprint(value), nil
}

func asInt(value interface{}) (int, error) {
	if isBlank(value) {
		return 0, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	return cast.ToIntE(value)
}

func asFloat64(value interface{}) (float64, error) {
	if isBlank(value) {
		return 0, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	return cast.ToFloat64E(value)
}

func asBool(value interface{}) (bool, error) {
	if isBlank(value) {
		return false, nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	return cast.ToBoolE(value)
}

// asDuration parses strings with time.ParseDuration and reads bare numbers as
// whole seconds, so "timeout: 10" in a config file means ten seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		return time.ParseDuration(v)
	default:
		secs, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("unsupported duration type %T", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
}

// asStringSlice accepts a list or a single string. A single string is one
// element; it is not split on whitespace.
func asStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	default:
		return cast.ToStringSliceE(v)
	}
}

// toStringKeyMap converts a decoded map to map[string]interface{} with
// trimmed, lower-case keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	result := make(map[string]interface{}, len(m))
	for key, val := range m {
		result[strings.ToLower(strings.TrimSpace(key))] = val
	}
	return result, nil
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}
