package runner

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every ConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrBusy is returned when a scenario is started while another one is running.
var ErrBusy = errors.New("a scenario is already running")

// ConfigError is a fatal configuration fault detected before any unit starts:
// bad parameters, an unknown scenario or a missing data directory. It is never retried.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "invalid configuration: " + msg
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnitError is a fault raised by one CPU or file unit. It fails the run but
// does not stop sibling units of a fan-out.
type UnitError struct {
	Scenario Scenario
	Unit     int
	Err      error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s unit %d: %v", e.Scenario, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// FailureLogger receives every failed network attempt, including ones that are retried.
type FailureLogger interface {
	LogFailure(err error)
}
