// Package docker inspects the containers of a Compose project through the
// Docker Engine API.
package docker

import (
	"context"
	"time"

	"github.com/artpar/airflow-compose/internal/core/monitoring"
)

// =============================================================================
// Container Info
// =============================================================================

// ContainerStatus represents the container status.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// Health check states reported by the engine. An empty Health means the
// container has no health check.
const (
	HealthStarting  = "starting"
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// PortBinding is a published container port.
type PortBinding struct {
	ContainerPort int
	HostPort      int
	Protocol      string // "tcp" or "udp"
	HostIP        string
}

// ContainerInfo contains information about a container.
type ContainerInfo struct {
	ID        string
	Name      string
	Image     string
	Status    ContainerStatus
	Health    string
	Service   string // com.docker.compose.service
	CreatedAt time.Time
	Ports     []PortBinding
	Labels    map[string]string
	ExitCode  int
}

// State converts the container to the form the readiness rules consume.
func (c ContainerInfo) State() monitoring.ContainerState {
	return monitoring.ContainerState{
		Name:     c.Name,
		Status:   string(c.Status),
		Health:   c.Health,
		ExitCode: c.ExitCode,
	}
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines options for listing containers.
type ListOptions struct {
	All     bool              // Include stopped containers
	Filters map[string]string // e.g., {"label": "com.docker.compose.project=xyz"}
}

// LogOptions defines options for container logs.
type LogOptions struct {
	Tail       string // "all" or number
	Since      time.Time
	Timestamps bool
}

// =============================================================================
// Client Interface
// =============================================================================

// Client is the subset of the Docker Engine API used to watch a Compose
// project.
type Client interface {
	InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error)
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)
	ContainerLogs(ctx context.Context, containerID string, opts LogOptions) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Label Constants
// =============================================================================

// Labels set by docker compose on every container it creates.
const (
	LabelProject = "com.docker.compose.project"
	LabelService = "com.docker.compose.service"
	LabelOneOff  = "com.docker.compose.oneoff"
)

// ProjectFilter lists every container of a Compose project.
func ProjectFilter(project string) ListOptions {
	return ListOptions{
		All:     true,
		Filters: map[string]string{"label": LabelProject + "=" + project},
	}
}
