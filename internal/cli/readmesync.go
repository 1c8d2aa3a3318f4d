package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/airflow-compose/internal/core/readme"
)

// errFileUpdated signals that readme-sync rewrote the file. It maps to exit
// code 1 so CI can fail when the committed README is stale.
var errFileUpdated = errors.New("file updated")

var errNoSubcommand = errors.New("a subcommand is required: usage or version")

// NewReadmeSyncCmd builds the readme-sync command with its usage and version
// subcommands.
func NewReadmeSyncCmd() *cobra.Command {
	var readmePath string

	cmd := &cobra.Command{
		Use:           "readme-sync",
		Short:         "Keep README.md in sync with the render CLI and the pinned Airflow version",
		SilenceErrors: true,
		SilenceUsage:  true,
		// Unknown subcommands are rejected by cobra's root argument check.
		RunE: func(*cobra.Command, []string) error {
			return errNoSubcommand
		},
	}
	cmd.PersistentFlags().StringVar(&readmePath, "readme", "README.md", "Path to the README to update")

	cmd.AddCommand(&cobra.Command{
		Use:   "usage",
		Short: "Splice render --help into the usage section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			help, err := HelpText()
			if err != nil {
				return &runError{err: err}
			}
			return syncFile(cmd.OutOrStdout(), readmePath, func(content string) (string, error) {
				return readme.SyncUsage(content, help)
			})
		},
	})

	var requirementsPath string
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Splice the pinned Airflow version into the version section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reqs, err := os.ReadFile(requirementsPath)
			if err != nil {
				return &runError{err: fmt.Errorf("read requirements: %w", err)}
			}
			version, err := readme.ParsePinnedVersion(string(reqs))
			if err != nil {
				return &runError{err: err}
			}
			return syncFile(cmd.OutOrStdout(), readmePath, func(content string) (string, error) {
				return readme.SyncVersion(content, version)
			})
		},
	}
	versionCmd.Flags().StringVar(&requirementsPath, "requirements", "requirements-airflow.txt", "Path to the pinned Airflow requirement")
	cmd.AddCommand(versionCmd)

	return cmd
}

// syncFile rewrites path with update(content) when the result differs.
func syncFile(out io.Writer, path string, update func(string) (string, error)) error {
	current, err := os.ReadFile(path)
	if err != nil {
		return &runError{err: fmt.Errorf("read readme: %w", err)}
	}

	updated, err := update(string(current))
	if err != nil {
		return &runError{err: fmt.Errorf("%s: %w", path, err)}
	}

	if bytes.Equal(current, []byte(updated)) {
		fmt.Fprintln(out, "No changes needed")
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return &runError{err: fmt.Errorf("write readme: %w", err)}
	}
	fmt.Fprintf(out, "File updated: %s\n", path)
	return errFileUpdated
}

// RunReadmeSync executes readme-sync with args and returns the process exit
// code: 0 when nothing changed, 1 when the file was rewritten and 2 on any
// error.
func RunReadmeSync(args []string, stdout, stderr io.Writer) int {
	cmd := NewReadmeSyncCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteC()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errFileUpdated):
		return ExitFailure
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var runErr *runError
	if !errors.As(err, &runErr) {
		fmt.Fprint(stderr, executed.UsageString())
	}
	return ExitUsage
}
