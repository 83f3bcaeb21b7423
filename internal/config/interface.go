package config

import (
	"fmt"
	"strings"
)

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// Mode selects how the runner halts between cycles.
type Mode string

const (
	// ModeOneshot arms the RTC and exits; the next cycle is a cold start.
	ModeOneshot Mode = "oneshot"
	// ModeLoop sleeps in process, for hosts without an RTC wake alarm.
	ModeLoop Mode = "loop"
)

func (m Mode) IsValid() bool {
	return m == ModeOneshot || m == ModeLoop
}

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

// ValidationErrors collects every invalid value found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}

	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e ValidationErrors) Has(field string) bool {
	for _, v := range e {
		if v.Field == field {
			return true
		}
	}

	return false
}
