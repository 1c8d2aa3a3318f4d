// Package templates ships the deployment templates inside the binary.
package templates

import "embed"

// DockerCompose is the name of the Compose deployment template.
const DockerCompose = "docker-compose.yaml.tmpl"

// FS holds every template shipped with the program.
//
//go:embed *.tmpl
var FS embed.FS
