package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when no API key source yields a value.
var ErrMissingAPIKey error = &ConfigError{
	Message: "You must provide an --api-key or have OMDB_API_KEY set in your environment",
}

// ConfigError represents a problem with the program configuration
type ConfigError struct {
	Message string
	Err     error
}

// Error keeps the cause on the same line as the message; parser errors
// (yaml in particular) can span several lines.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(strings.Fields(e.Err.Error()), " "))
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) diagnostic() {}

// NewConfigError creates a ConfigError with an optional cause
func NewConfigError(message string, err error) *ConfigError {
	return &ConfigError{Message: message, Err: err}
}

// IsConfigError checks if err is a ConfigError
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return stdErrors.As(err, &cfgErr)
}
