// Package generator renders an Airflow Compose deployment for a selection and
// validates it against the Compose JSON Schema before handing it back.
package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/artpar/airflow-compose/internal/core/compose"
	"github.com/artpar/airflow-compose/internal/core/render"
	coreschema "github.com/artpar/airflow-compose/internal/core/schema"
	"github.com/artpar/airflow-compose/internal/core/selection"
	"github.com/artpar/airflow-compose/internal/shell/schema"
	"github.com/artpar/airflow-compose/templates"
)

// State is a step of one generation run.
type State string

const (
	StateStart     State = "start"
	StateParsed    State = "parsed"
	StateRendered  State = "rendered"
	StateValidated State = "validated"
	StateEmitted   State = "emitted"
	StateAborted   State = "aborted"
)

// Generator renders and validates deployment documents.
type Generator struct {
	renderer    *render.Renderer
	provider    schema.Provider
	template    string
	diagnostics io.Writer
	logger      *slog.Logger
}

// Config holds the collaborators of a Generator.
type Config struct {
	Renderer *render.Renderer
	Provider schema.Provider
	// Template defaults to templates.DockerCompose.
	Template string
	// Diagnostics receives the rendered document when validation fails.
	Diagnostics io.Writer
	Logger      *slog.Logger
}

// New creates a Generator.
func New(cfg Config) *Generator {
	if cfg.Template == "" {
		cfg.Template = templates.DockerCompose
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{
		renderer:    cfg.Renderer,
		provider:    cfg.Provider,
		template:    cfg.Template,
		diagnostics: cfg.Diagnostics,
		logger:      cfg.Logger,
	}
}

// Generate renders the deployment for sel and validates it.
//
// Selections below the minimum Airflow version abort before rendering. When
// parsing, fetching the schema or validation fails, the rendered document is
// written to the diagnostics writer and the original error is returned.
// Nothing is retried.
func (g *Generator) Generate(ctx context.Context, sel selection.Selection) (string, error) {
	g.transition(StateStart, "selection", sel.Slug(), "airflow_version", sel.AirflowVersion.String())

	if err := selection.CheckSupported(sel.AirflowVersion); err != nil {
		g.transition(StateAborted, "error", err)
		return "", err
	}
	g.transition(StateParsed)

	text, err := g.renderer.Render(g.template, sel.Values())
	if err != nil {
		g.transition(StateAborted, "error", err)
		return "", err
	}
	g.transition(StateRendered, "bytes", len(text))

	if err := g.Validate(ctx, text); err != nil {
		fmt.Fprintln(g.diagnostics, text)
		g.transition(StateAborted, "error", err)
		return "", err
	}
	g.transition(StateValidated)

	return text, nil
}

// Validate parses text and checks it against the provider's schema, then
// loads it with compose-go as a final structural check.
func (g *Generator) Validate(ctx context.Context, text string) error {
	doc, err := compose.ParseDocument(text)
	if err != nil {
		return err
	}

	schemaJSON, err := g.provider.Schema(ctx)
	if err != nil {
		return err
	}

	if err := coreschema.Validate(doc, schemaJSON); err != nil {
		return err
	}

	spec, err := compose.ParseComposeSpec(text)
	if err != nil {
		return err
	}
	g.logger.Debug("compose document loaded", "services", spec.ServiceNames())
	return nil
}

// Emit writes a validated document to w, terminated by exactly one newline.
func (g *Generator) Emit(w io.Writer, text string) error {
	if _, err := fmt.Fprintln(w, strings.TrimRight(text, "\n")); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	g.transition(StateEmitted)
	return nil
}

func (g *Generator) transition(state State, attrs ...any) {
	g.logger.Debug("generator state", append([]any{"state", string(state)}, attrs...)...)
}
