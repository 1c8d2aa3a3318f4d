package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/airflow-compose/internal/shell/schema"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "remote", cfg.Schema.Source)
	assert.Equal(t, schema.DefaultURL, cfg.Schema.URL)
	assert.Empty(t, cfg.Schema.File)
	assert.Zero(t, cfg.Schema.Timeout)
	assert.Empty(t, cfg.Template.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
schema:
  source: "file"
  file: "/etc/compose-spec.json"
  timeout: 15s

template:
  dir: "/opt/templates"

log:
  level: "debug"
  format: "json"
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Schema.Source)
	assert.Equal(t, "/etc/compose-spec.json", cfg.Schema.File)
	assert.Equal(t, 15*time.Second, cfg.Schema.Timeout)
	assert.Equal(t, schema.DefaultURL, cfg.Schema.URL)
	assert.Equal(t, "/opt/templates", cfg.Template.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("AIRFLOW_COMPOSE_SCHEMA_SOURCE", "embedded")
	t.Setenv("AIRFLOW_COMPOSE_SCHEMA_URL", "https://example.invalid/schema.json")
	t.Setenv("AIRFLOW_COMPOSE_SCHEMA_TIMEOUT", "3s")
	t.Setenv("AIRFLOW_COMPOSE_TEMPLATE_DIR", "/tmp/tmpl")
	t.Setenv("AIRFLOW_COMPOSE_LOG_LEVEL", "error")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "embedded", cfg.Schema.Source)
	assert.Equal(t, "https://example.invalid/schema.json", cfg.Schema.URL)
	assert.Equal(t, 3*time.Second, cfg.Schema.Timeout)
	assert.Equal(t, "/tmp/tmpl", cfg.Template.Dir)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("schema: [unclosed"), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestSchemaConfig_Provider(t *testing.T) {
	cfg := SchemaConfig{Source: "file", File: "/x.json", Timeout: time.Second}

	assert.Equal(t, schema.Config{
		Source:  schema.SourceFile,
		File:    "/x.json",
		Timeout: time.Second,
	}, cfg.Provider())
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugLogs bool
		warnLogs  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"bogus", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(&Config{Log: LogConfig{Level: tt.level}}, &buf)

			logger.Debug("debug line")
			logger.Warn("warn line")

			assert.Equal(t, tt.debugLogs, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.warnLogs, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestSetupLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "json"}}, &buf)

	logger.Info("hello", "selection", "celery-postgres")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"selection":"celery-postgres"`)
}

func TestSetupLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "text"}}, &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

// =============================================================================
// Helper Functions
// =============================================================================

// clearEnv blanks every override for the duration of the test. Viper treats
// empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"AIRFLOW_COMPOSE_SCHEMA_SOURCE",
		"AIRFLOW_COMPOSE_SCHEMA_URL",
		"AIRFLOW_COMPOSE_SCHEMA_FILE",
		"AIRFLOW_COMPOSE_SCHEMA_TIMEOUT",
		"AIRFLOW_COMPOSE_TEMPLATE_DIR",
		"AIRFLOW_COMPOSE_LOG_LEVEL",
		"AIRFLOW_COMPOSE_LOG_FORMAT",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}
