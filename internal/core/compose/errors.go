// Package compose contains pure functions for parsing rendered Docker Compose documents.
// This is part of the Functional Core - all functions are pure with no I/O.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("compose document is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")
	ErrNotMapping  = errors.New("compose document must be a mapping")

	// Compose structure errors
	ErrNoServices         = errors.New("compose document must define at least one service")
	ErrServiceNoImage     = errors.New("service must have image or build")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrInvalidCompose     = errors.New("invalid compose document")
)

// ParseError wraps errors with context about where parsing failed.
type ParseError struct {
	Field   string // e.g., "services.airflow-worker"
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
