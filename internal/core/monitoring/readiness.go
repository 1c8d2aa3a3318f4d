// Package monitoring classifies the containers of a running deployment.
// It contains NO I/O; the shell feeds it inspected container states.
package monitoring

import "sort"

// =============================================================================
// Types
// =============================================================================

// Readiness is the settled state of one container or of a whole project.
type Readiness int

const (
	// Pending containers may still become ready.
	Pending Readiness = iota
	// Ready containers are healthy, running without a health check, or
	// finished with exit code 0 (one-shot init services).
	Ready
	// Failed containers are unhealthy, dead, or exited with a non-zero code.
	Failed
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// ContainerState is what the engine reports about one container.
type ContainerState struct {
	Name     string
	Status   string // created, running, restarting, exited, dead, ...
	Health   string // healthy, unhealthy, starting, or "" without a health check
	ExitCode int
}

// =============================================================================
// Classification (Pure Functions)
// =============================================================================

// ReadinessOf classifies one container.
func ReadinessOf(c ContainerState) Readiness {
	switch c.Status {
	case "exited":
		if c.ExitCode == 0 {
			return Ready
		}
		return Failed
	case "dead":
		return Failed
	case "running":
		switch c.Health {
		case "healthy", "":
			return Ready
		case "unhealthy":
			return Failed
		}
	}
	return Pending
}

// Summary is the readiness of a project.
type Summary struct {
	Readiness Readiness
	Pending   []string // sorted names
	Failed    []string // sorted names
}

// Summarize aggregates container readiness. Any failed container fails the
// project; otherwise any pending container keeps it pending. An empty project
// is pending because its containers have not been created yet.
func Summarize(containers []ContainerState) Summary {
	var s Summary
	for _, c := range containers {
		switch ReadinessOf(c) {
		case Failed:
			s.Failed = append(s.Failed, c.Name)
		case Pending:
			s.Pending = append(s.Pending, c.Name)
		}
	}
	sort.Strings(s.Pending)
	sort.Strings(s.Failed)

	switch {
	case len(s.Failed) > 0:
		s.Readiness = Failed
	case len(s.Pending) > 0 || len(containers) == 0:
		s.Readiness = Pending
	default:
		s.Readiness = Ready
	}
	return s
}
