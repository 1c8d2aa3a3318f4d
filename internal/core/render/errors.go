package render

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrUndefinedValue   = errors.New("undefined template value")
)

// TemplateError wraps any failure to load, parse or execute a template.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// AbortError is raised by the in-template fail function.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return e.Message
}
