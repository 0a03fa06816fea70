package models

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from a tabular input.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// NotFittedError is returned when a vectorizer model is queried before Fit.
type NotFittedError struct{}

func (e *NotFittedError) Error() string {
	return "vectorizer not fitted: call Fit before Transform"
}

// ConfigError reports required configuration values that are absent or invalid
// after merging file values and overrides.
type ConfigError struct {
	Fields []string
	Reason string
}

func (e *ConfigError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid config: " + e.Reason
	}
	return fmt.Sprintf("invalid config: %s: %s", strings.Join(e.Fields, ", "), e.Reason)
}

// NotFoundError reports an input file or location that does not exist.
type NotFoundError struct {
	Kind string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return "not found: " + e.Path
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Path)
}
