package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/airflow-compose/internal/core/compose"
)

func runMatrix(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut strings.Builder
	code := RunMatrix(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunMatrix_WritesEverySelection(t *testing.T) {
	offline(t)
	dir := t.TempDir()

	code, stdout, stderr := runMatrix(t, "--airflow-version", "2.5.1", "--output-dir", dir)
	require.Equal(t, ExitSuccess, code, stderr)

	slugs := []string{"celery-postgres", "celery-mysql", "local-postgres", "local-mysql"}
	var want []string
	for _, slug := range slugs {
		path := filepath.Join(dir, slug, MatrixFileName)
		want = append(want, path)

		data, err := os.ReadFile(path)
		require.NoError(t, err, slug)
		assert.Contains(t, string(data), "apache/airflow:2.5.1")

		spec, err := compose.ParseComposeSpec(string(data))
		require.NoError(t, err, slug)
		_, hasWorker := spec.Service("airflow-worker")
		assert.Equal(t, strings.HasPrefix(slug, "celery"), hasWorker, slug)
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", stdout)
}

func TestRunMatrix_UnsupportedVersion(t *testing.T) {
	offline(t)
	dir := t.TempDir()

	code, stdout, stderr := runMatrix(t, "--airflow-version", "2.0.2", "--output-dir", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Unsupported Airflow version [2.0.2]. At least version 2.1.0 is required.\n", stderr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunMatrix_MissingVersion(t *testing.T) {
	offline(t)

	code, _, stderr := runMatrix(t, "--output-dir", t.TempDir())
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "airflow-version")
}
