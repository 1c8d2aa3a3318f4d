// Package schema validates parsed documents against a JSON Schema.
// This is part of the Functional Core - the schema arrives as bytes, no I/O.
package schema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// resourceURL names the in-memory schema resource. It only has to be unique
// within one compiler.
const resourceURL = "mem://compose-spec.json"

var (
	ErrInvalidSchema  = errors.New("invalid JSON schema")
	ErrSchemaMismatch = errors.New("document does not match schema")
)

// CompileError reports a schema document that cannot be compiled.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile schema: %v", e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{ErrInvalidSchema, e.Err}
}

// ValidationError reports a document that fails the schema. Err is the
// *jsonschema.ValidationError with the full cause tree.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrSchemaMismatch, e.Err}
}

// Compile parses and compiles a JSON Schema document.
func Compile(schemaJSON []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, &CompileError{Err: err}
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, &CompileError{Err: err}
	}
	sch, err := c.Compile(resourceURL)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return sch, nil
}

// Validate checks doc against the schema in schemaJSON. doc must be
// JSON-compatible data (maps with string keys, slices, scalars).
func Validate(doc any, schemaJSON []byte) error {
	sch, err := Compile(schemaJSON)
	if err != nil {
		return err
	}
	return ValidateWith(sch, doc)
}

// ValidateWith checks doc against an already compiled schema.
func ValidateWith(sch *jsonschema.Schema, doc any) error {
	if err := sch.Validate(doc); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
