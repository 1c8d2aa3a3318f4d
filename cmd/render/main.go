// Command render writes a validated docker-compose.yaml for Apache Airflow
// to stdout.
//
// Usage:
//
//	render --executor {CeleryExecutor|LocalExecutor} --airflow-version SEMVER [--db-backend {postgres|mysql}]
package main

import (
	"os"

	"github.com/artpar/airflow-compose/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
