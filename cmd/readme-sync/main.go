// Command readme-sync keeps README.md in sync with the render CLI help text
// and the pinned Airflow version.
//
// Usage:
//
//	readme-sync usage   [--readme README.md]
//	readme-sync version [--readme README.md] [--requirements requirements-airflow.txt]
//
// It exits 1 when the README was rewritten so CI can flag stale docs.
package main

import (
	"os"

	"github.com/artpar/airflow-compose/internal/cli"
)

func main() {
	os.Exit(cli.RunReadmeSync(os.Args[1:], os.Stdout, os.Stderr))
}
