package docker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/airflow-compose/internal/core/monitoring"
)

// WaitOptions configures WaitForHealthy.
type WaitOptions struct {
	Interval time.Duration // defaults to 5s
	Timeout  time.Duration // defaults to 5m
	Logger   *slog.Logger
}

// WaitForHealthy polls the containers of a Compose project until every one
// of them is ready. It fails fast with ErrUnhealthy when a container fails
// and returns ErrTimeout when the deadline passes first.
func WaitForHealthy(ctx context.Context, c Client, project string, opts WaitOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		summary, err := ProjectReadiness(ctx, c, project)
		if err != nil {
			return err
		}
		switch summary.Readiness {
		case monitoring.Ready:
			return nil
		case monitoring.Failed:
			return NewDockerError("WaitForHealthy", "project", project,
				"failed containers: "+strings.Join(summary.Failed, ", "), ErrUnhealthy)
		}
		opts.Logger.Info("waiting for containers", "project", project, "pending", summary.Pending)

		select {
		case <-ctx.Done():
			waiting := "no containers"
			if len(summary.Pending) > 0 {
				waiting = strings.Join(summary.Pending, ", ")
			}
			return NewDockerError("WaitForHealthy", "project", project,
				fmt.Sprintf("still waiting for %s", waiting), ErrTimeout)
		case <-ticker.C:
		}
	}
}

// ProjectReadiness inspects every container of a Compose project.
func ProjectReadiness(ctx context.Context, c Client, project string) (monitoring.Summary, error) {
	containers, err := c.ListContainers(ctx, ProjectFilter(project))
	if err != nil {
		return monitoring.Summary{}, err
	}

	states := make([]monitoring.ContainerState, 0, len(containers))
	for _, listed := range containers {
		info, err := c.InspectContainer(ctx, listed.ID)
		if err != nil {
			return monitoring.Summary{}, err
		}
		states = append(states, info.State())
	}
	return monitoring.Summarize(states), nil
}
