package engine

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by Config.Validate when no LLM key is configured.
var ErrMissingAPIKey = errors.New("LLM_API_KEY (or GOOGLE_API_KEY) is not set")

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("empty response")

// ConfigError reports an unsupported configuration value.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unsupported %s value %q", e.Field, e.Value)
}
