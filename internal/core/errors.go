package core

import (
	"fmt"
)

// ConfigError reports missing or invalid configuration for a model backend
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// NewMissingConfigError creates a ConfigError for a required key that has no value
func NewMissingConfigError(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "required value is not set"}
}
