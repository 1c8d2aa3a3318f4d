// Command render-matrix renders docker-compose.yaml for every executor and
// database backend pair of one Airflow version.
//
// Usage:
//
//	render-matrix --airflow-version SEMVER [--output-dir compose-files]
package main

import (
	"os"

	"github.com/artpar/airflow-compose/internal/cli"
)

func main() {
	os.Exit(cli.RunMatrix(os.Args[1:], os.Stdout, os.Stderr))
}
