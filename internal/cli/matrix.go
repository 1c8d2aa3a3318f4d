package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blang/semver/v4"
	"github.com/spf13/cobra"

	"github.com/artpar/airflow-compose/internal/core/selection"
	"github.com/artpar/airflow-compose/internal/shell/schema"
)

// MatrixFileName is the file written in every selection directory.
const MatrixFileName = "docker-compose.yaml"

// NewMatrixCmd builds the render-matrix command. It renders every executor and
// backend pair for one Airflow version into
// <output-dir>/<executor>-<backend>/docker-compose.yaml.
func NewMatrixCmd() *cobra.Command {
	var (
		version    versionValue
		outputDir  string
		configPath string
	)
	v := newViper()

	cmd := &cobra.Command{
		Use:           "render-matrix",
		Short:         "Render docker-compose.yaml for every executor and database backend",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return &runError{err: err}
			}
			if err := renderMatrix(cmd, cfg, version.version, outputDir); err != nil {
				return &runError{err: err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Var(&version, "airflow-version", "Airflow version, at least "+selection.MinimumAirflowVersion.String())
	flags.StringVar(&outputDir, "output-dir", "compose-files", "Directory that receives one subdirectory per selection")
	flags.StringVar(&configPath, "config", "", "Path to config file")
	flags.String("schema-source", string(schema.SourceRemote), "Where to load the Compose schema from (remote|embedded|file)")
	if err := v.BindPFlag("schema.source", flags.Lookup("schema-source")); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("airflow-version"); err != nil {
		panic(err)
	}

	return cmd
}

func renderMatrix(cmd *cobra.Command, cfg *Config, version semver.Version, outputDir string) error {
	wrap := func(p schema.Provider) schema.Provider { return schema.NewCachedProvider(p) }
	gen, err := newGenerator(cfg, wrap, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	for _, sel := range selection.All(version) {
		text, err := gen.Generate(cmd.Context(), sel)
		if err != nil {
			return fmt.Errorf("%s: %w", sel.Slug(), err)
		}

		dir := filepath.Join(outputDir, sel.Slug())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		path := filepath.Join(dir, MatrixFileName)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		emitErr := gen.Emit(f, text)
		if err := errors.Join(emitErr, f.Close()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// RunMatrix executes render-matrix with args and returns the process exit code.
func RunMatrix(args []string, stdout, stderr io.Writer) int {
	cmd := NewMatrixCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteC()
	return exitCode(executed, err, stderr)
}
