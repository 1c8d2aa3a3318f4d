//go:build e2e

// Package e2e starts rendered Airflow deployments with docker compose and
// runs an example DAG against them.
//
// The compose files are produced by render-matrix. Run with:
//
//	go run ./cmd/render-matrix --airflow-version 2.5.1
//	go test -tags e2e -v -timeout 30m ./tests/e2e/...
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Compose Project
// =============================================================================

// Project is a docker compose project in its own working directory.
type Project struct {
	Name string
	Dir  string
	t    *testing.T
}

// Run executes `docker compose <args>` in the project directory and returns
// the combined output. The command line and output are logged.
func (p *Project) Run(ctx context.Context, args ...string) (string, error) {
	p.t.Helper()
	full := append([]string{"compose", "--project-name", p.Name}, args...)
	p.t.Logf("$ docker %s", strings.Join(full, " "))

	cmd := exec.CommandContext(ctx, "docker", full...)
	cmd.Dir = p.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()

	p.t.Log(out.String())
	if err != nil {
		return out.String(), fmt.Errorf("docker %s: %w", strings.Join(full, " "), err)
	}
	return out.String(), nil
}

// MustRun is Run that fails the test on error.
func (p *Project) MustRun(ctx context.Context, args ...string) string {
	p.t.Helper()
	out, err := p.Run(ctx, args...)
	require.NoError(p.t, err)
	return out
}

// NewProject lays out a temporary working directory for composeFile: the
// dags, logs and plugins mounts, a .env carrying AIRFLOW_UID, the compose
// file itself and the example DAG.
func NewProject(t *testing.T, name, composeFile, dagURL string) *Project {
	t.Helper()
	dir := t.TempDir()

	for _, sub := range []string{"dags", "logs", "plugins"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0777))
		// The containers write as AIRFLOW_UID; make sure they can.
		require.NoError(t, os.Chmod(filepath.Join(dir, sub), 0777))
	}
	env := fmt.Sprintf("AIRFLOW_UID=%d\n", os.Getuid())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))

	data, err := os.ReadFile(composeFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yaml"), data, 0644))

	require.NoError(t, download(dagURL, filepath.Join(dir, "dags", filepath.Base(dagURL))))

	return &Project{Name: name, Dir: dir, t: t}
}

// =============================================================================
// Helpers
// =============================================================================

// ComposeFiles returns the rendered compose files under root whose path
// mentions every keyword.
func ComposeFiles(root string, keywords ...string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "docker-compose.yaml" {
			return nil
		}
		for _, k := range keywords {
			if !strings.Contains(path, k) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func download(url, dest string) error {
	resp, err := cleanhttp.DefaultClient().Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	return f.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
