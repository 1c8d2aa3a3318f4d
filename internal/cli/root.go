// Package cli implements the render command line interface.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/artpar/airflow-compose/internal/core/render"
	"github.com/artpar/airflow-compose/internal/core/selection"
	"github.com/artpar/airflow-compose/internal/shell/generator"
	"github.com/artpar/airflow-compose/internal/shell/schema"
	"github.com/artpar/airflow-compose/templates"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// runError marks failures that happened after argument parsing succeeded.
// Any other error returned by cobra is a usage error.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

type renderOptions struct {
	executor   *choiceValue
	dbBackend  *choiceValue
	version    versionValue
	configPath string
}

// NewRootCmd builds the render command.
func NewRootCmd() *cobra.Command {
	opts := &renderOptions{
		executor:  newChoiceValue("", selection.ExecutorChoices()),
		dbBackend: newChoiceValue(string(selection.DefaultDBBackend), selection.DBBackendChoices()),
	}
	v := newViper()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a docker-compose.yaml for Apache Airflow",
		Long: `Render a docker-compose.yaml for Apache Airflow and validate it against the
Compose Specification JSON Schema. The document is written to stdout.

The schema is fetched from the upstream compose-spec repository on every run.
Set AIRFLOW_COMPOSE_SCHEMA_SOURCE=embedded to validate against the schema
pinned in this build instead.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runRender(cmd, v, opts); err != nil {
				return &runError{err: err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.Var(opts.executor, "executor", "Airflow executor")
	flags.Var(&opts.version, "airflow-version", "Airflow version, at least "+selection.MinimumAirflowVersion.String())
	flags.Var(opts.dbBackend, "db-backend", "Metadata database backend")
	flags.StringVar(&opts.configPath, "config", "", "Path to config file")
	flags.String("schema-source", string(schema.SourceRemote), "Where to load the Compose schema from (remote|embedded|file)")
	if err := v.BindPFlag("schema.source", flags.Lookup("schema-source")); err != nil {
		panic(err)
	}

	for _, name := range []string{"executor", "airflow-version"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

func runRender(cmd *cobra.Command, v *viper.Viper, opts *renderOptions) error {
	cfg, err := loadConfig(v, opts.configPath)
	if err != nil {
		return err
	}

	gen, err := newGenerator(cfg, nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sel := selection.Selection{
		Executor:       selection.Executor(opts.executor.String()),
		AirflowVersion: opts.version.version,
		DBBackend:      selection.DBBackend(opts.dbBackend.String()),
	}

	text, err := gen.Generate(cmd.Context(), sel)
	if err != nil {
		return err
	}
	return gen.Emit(cmd.OutOrStdout(), text)
}

// newGenerator wires a generator from cfg. wrap, when set, decorates the
// configured schema provider. Logs and diagnostics go to stderr.
func newGenerator(cfg *Config, wrap func(schema.Provider) schema.Provider, stderr io.Writer) (*generator.Generator, error) {
	logger := SetupLogger(cfg, stderr)

	provider, err := schema.NewProvider(cfg.Schema.Provider())
	if err != nil {
		return nil, err
	}
	if wrap != nil {
		provider = wrap(provider)
	}

	var fsys fs.FS = templates.FS
	if cfg.Template.Dir != "" {
		fsys = os.DirFS(cfg.Template.Dir)
	}

	return generator.New(generator.Config{
		Renderer:    render.New(fsys),
		Provider:    provider,
		Diagnostics: stderr,
		Logger:      logger,
	}), nil
}

// Run executes the render command with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteC()
	return exitCode(executed, err, stderr)
}

// exitCode reports err on stderr and maps it to an exit code. Errors raised
// before the command ran are usage errors and are followed by the usage text.
func exitCode(executed *cobra.Command, err error, stderr io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var runErr *runError
	if !errors.As(err, &runErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprint(stderr, executed.UsageString())
		return ExitUsage
	}

	var unsupported *selection.UnsupportedVersionError
	if errors.As(err, &unsupported) {
		fmt.Fprintln(stderr, unsupported.Error())
		return ExitFailure
	}

	fmt.Fprintf(stderr, "Error: %v\n", runErr.err)
	return ExitFailure
}

// HelpText returns the output of render --help.
func HelpText() (string, error) {
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--help"})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := cmd.Execute(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
