package calculate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for empty series or series without a single non-missing value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration is returned when a parameter is out of its allowed range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ConfigError names the parameter that failed validation
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v %s", e.Param, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfiguration
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewConfigError builds a ConfigError for param
func NewConfigError(param string, value any, reason string) error {
	return &ConfigError{Param: param, Value: value, Reason: reason}
}

// CheckSeries rejects empty series and series where every value is missing
func CheckSeries(series []float64) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty series", ErrInvalidInput)
	}
	if CountValid(series) == 0 {
		return fmt.Errorf("%w: all %d values are missing", ErrInvalidInput, len(series))
	}
	return nil
}
