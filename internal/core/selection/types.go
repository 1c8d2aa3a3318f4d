// Package selection resolves the user's deployment choices (executor, database
// backend, Airflow version) into an immutable Selection.
// This is part of the Functional Core - all functions are pure with no I/O.
package selection

import (
	"github.com/blang/semver/v4"
)

// =============================================================================
// Executor
// =============================================================================

// Executor is the Airflow task-execution mode.
type Executor string

const (
	ExecutorCelery Executor = "CeleryExecutor"
	ExecutorLocal  Executor = "LocalExecutor"
)

// Executors lists the supported executors in display order.
var Executors = []Executor{ExecutorCelery, ExecutorLocal}

// Slug returns the short lowercase name used in directory names ("celery", "local").
func (e Executor) Slug() string {
	switch e {
	case ExecutorCelery:
		return "celery"
	case ExecutorLocal:
		return "local"
	default:
		return string(e)
	}
}

// =============================================================================
// Database Backend
// =============================================================================

// DBBackend is the metadata database used by Airflow.
type DBBackend string

const (
	DBBackendPostgres DBBackend = "postgres"
	DBBackendMySQL    DBBackend = "mysql"
)

// DBBackends lists the supported backends in display order.
var DBBackends = []DBBackend{DBBackendPostgres, DBBackendMySQL}

// DefaultDBBackend is used when no backend is selected.
const DefaultDBBackend = DBBackendPostgres

// =============================================================================
// Selection
// =============================================================================

// MinimumAirflowVersion is the oldest Airflow release the template supports.
var MinimumAirflowVersion = semver.MustParse("2.1.0")

// Selection is a validated set of deployment choices.
type Selection struct {
	Executor       Executor
	AirflowVersion semver.Version
	DBBackend      DBBackend
}

// Template value keys.
const (
	ValueAirflowVersion = "airflow_version"
	ValueExecutor       = "executor"
	ValueDBBackend      = "db_backend"
)

// Values returns the template rendering context for this selection.
func (s Selection) Values() map[string]any {
	return map[string]any{
		ValueAirflowVersion: s.AirflowVersion.String(),
		ValueExecutor:       string(s.Executor),
		ValueDBBackend:      string(s.DBBackend),
	}
}

// Slug returns "<executor>-<backend>", e.g. "celery-postgres".
func (s Selection) Slug() string {
	return s.Executor.Slug() + "-" + string(s.DBBackend)
}
