package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const minimalValidSpec = `
services:
  app:
    image: nginx:latest
`

const anchoredSpec = `
x-common:
  &common
  image: apache/airflow:2.5.0
  environment:
    &common-env
    AIRFLOW__CORE__EXECUTOR: LocalExecutor
  depends_on:
    &common-depends-on
    postgres:
      condition: service_healthy

services:
  postgres:
    image: postgres:13
    healthcheck:
      test: ["CMD", "pg_isready", "-U", "airflow"]
      interval: 5s
      retries: 5
    restart: always

  airflow-webserver:
    <<: *common
    command: webserver
    ports:
      - "8080:8080"
    environment:
      <<: *common-env
      EXTRA: "1"

  airflow-cli:
    <<: *common
    profiles:
      - debug

volumes:
  postgres-db-volume:
`

const circularSpec = `
services:
  a:
    image: busybox
    depends_on:
      - b
  b:
    image: busybox
    depends_on:
      - a
`

// =============================================================================
// ParseDocument Tests
// =============================================================================

func TestParseDocument_EmptyInput(t *testing.T) {
	_, err := ParseDocument("   \n ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseDocument_InvalidYAML(t *testing.T) {
	_, err := ParseDocument("services:\n  app: [unclosed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidYAML))

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseDocument_NotMapping(t *testing.T) {
	_, err := ParseDocument("- just\n- a list\n")
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestParseDocument_ResolvesMergeKeys(t *testing.T) {
	doc, err := ParseDocument(anchoredSpec)
	require.NoError(t, err)

	services, ok := doc["services"].(map[string]any)
	require.True(t, ok)

	web, ok := services["airflow-webserver"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "apache/airflow:2.5.0", web["image"])
	assert.NotContains(t, web, "<<")

	env, ok := web["environment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "LocalExecutor", env["AIRFLOW__CORE__EXECUTOR"])
	assert.Equal(t, "1", env["EXTRA"])
}

func TestParseDocument_NormalizesNonStringKeys(t *testing.T) {
	doc, err := ParseDocument("x-codes:\n  200: ok\n  404: missing\n")
	require.NoError(t, err)

	codes, ok := doc["x-codes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", codes["200"])
}

// =============================================================================
// ParseComposeSpec Tests
// =============================================================================

func TestParseComposeSpec_MinimalValid(t *testing.T) {
	spec, err := ParseComposeSpec(minimalValidSpec)
	require.NoError(t, err)
	require.Len(t, spec.Services, 1)
	assert.Equal(t, "app", spec.Services[0].Name)
	assert.Equal(t, "nginx:latest", spec.Services[0].Image)
}

func TestParseComposeSpec_Anchors(t *testing.T) {
	spec, err := ParseComposeSpec(anchoredSpec)
	require.NoError(t, err)

	// airflow-cli sits behind an inactive profile.
	assert.Equal(t, []string{"airflow-webserver", "postgres"}, spec.ServiceNames())

	web, ok := spec.Service("airflow-webserver")
	require.True(t, ok)
	assert.Equal(t, "apache/airflow:2.5.0", web.Image)
	assert.Equal(t, []string{"webserver"}, web.Command)
	assert.Equal(t, []string{"postgres"}, web.DependsOn)
	assert.Equal(t, "LocalExecutor", web.Environment["AIRFLOW__CORE__EXECUTOR"])
	require.Len(t, web.Ports, 1)
	assert.Equal(t, uint32(8080), web.Ports[0].Target)
	assert.Equal(t, "8080", web.Ports[0].Published)

	pg, ok := spec.Service("postgres")
	require.True(t, ok)
	assert.Equal(t, RestartAlways, pg.Restart)
	require.NotNil(t, pg.HealthCheck)
	assert.Equal(t, []string{"CMD", "pg_isready", "-U", "airflow"}, pg.HealthCheck.Test)
	assert.Equal(t, 5, pg.HealthCheck.Retries)

	require.Len(t, spec.Volumes, 1)
	assert.Equal(t, "postgres-db-volume", spec.Volumes[0].Name)
}

func TestParseComposeSpec_EmptyInput(t *testing.T) {
	_, err := ParseComposeSpec("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseComposeSpec_CircularDependency(t *testing.T) {
	_, err := ParseComposeSpec(circularSpec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestParseComposeSpec_ServiceLookupMissing(t *testing.T) {
	spec, err := ParseComposeSpec(minimalValidSpec)
	require.NoError(t, err)

	_, ok := spec.Service("nope")
	assert.False(t, ok)
}

// =============================================================================
// detectCircularDependencies Tests
// =============================================================================

func TestDetectCircularDependencies(t *testing.T) {
	tests := []struct {
		name     string
		services []Service
		wantErr  bool
	}{
		{
			name: "chain",
			services: []Service{
				{Name: "web", DependsOn: []string{"db"}},
				{Name: "db"},
			},
		},
		{
			name:     "self reference",
			services: []Service{{Name: "web", DependsOn: []string{"web"}}},
			wantErr:  true,
		},
		{
			name: "three node cycle",
			services: []Service{
				{Name: "a", DependsOn: []string{"b"}},
				{Name: "b", DependsOn: []string{"c"}},
				{Name: "c", DependsOn: []string{"a"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := detectCircularDependencies(tt.services)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCircularDependency)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
