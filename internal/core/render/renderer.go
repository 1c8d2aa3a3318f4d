// Package render renders deployment templates with strict value resolution.
//
// Templates use Go text/template syntax. A value referenced by a template but
// absent from the supplied map aborts rendering, and the template may call
// fail "message" to reject a combination of values it cannot render.
//
// # Functions available to templates
//
//   - the slim-sprig text function library (default, quote, indent, ...)
//   - fail MESSAGE: abort rendering with MESSAGE
//   - versionAtLeast VERSION MIN: semantic version comparison
//
// Whitespace around actions is controlled with the standard {{- and -}} markers.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/blang/semver/v4"
	sprig "github.com/go-task/slim-sprig/v3"
)

// Renderer loads named templates from a file system and renders them.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFuncs adds template functions. Built-in fail cannot be overridden.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// New creates a Renderer reading templates from fsys.
func New(fsys fs.FS, opts ...Option) *Renderer {
	r := &Renderer{
		fsys:  fsys,
		funcs: sprig.TxtFuncMap(),
	}
	r.funcs["versionAtLeast"] = versionAtLeast
	for _, opt := range opts {
		opt(r)
	}
	r.funcs["fail"] = fail
	return r
}

// Render executes the named template against values.
func (r *Renderer) Render(name string, values map[string]any) (string, error) {
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateError{Template: name, Err: ErrTemplateNotFound}
		}
		return "", &TemplateError{Template: name, Err: err}
	}
	return r.RenderString(name, string(src), values)
}

// RenderString executes src as a template named name.
func (r *Renderer) RenderString(name, src string, values map[string]any) (string, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(r.funcs).
		Parse(src)
	if err != nil {
		return "", &TemplateError{Template: name, Err: err}
	}

	if values == nil {
		values = map[string]any{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", &TemplateError{Template: name, Err: classifyExecError(err)}
	}
	return buf.String(), nil
}

// classifyExecError tags missing-key failures with ErrUndefinedValue so
// callers can tell them apart from other execution errors.
func classifyExecError(err error) error {
	var abort *AbortError
	if errors.As(err, &abort) {
		return err
	}
	if strings.Contains(err.Error(), "map has no entry for key") {
		return fmt.Errorf("%w: %w", ErrUndefinedValue, err)
	}
	return err
}

func fail(message string) (string, error) {
	return "", &AbortError{Message: message}
}

func versionAtLeast(version, minimum string) (bool, error) {
	v, err := semver.Parse(version)
	if err != nil {
		return false, fmt.Errorf("versionAtLeast: %w", err)
	}
	m, err := semver.Parse(minimum)
	if err != nil {
		return false, fmt.Errorf("versionAtLeast: %w", err)
	}
	return v.GTE(m), nil
}
