// Package airflow provides a client for the Airflow stable REST API (v1).
// It is used by the integration harness to drive a DAG run against a freshly
// started deployment.
package airflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// Defaults match the credentials created by the airflow-init service.
const (
	DefaultBaseURL  = "http://localhost:8080/api/v1"
	DefaultUsername = "airflow"
	DefaultPassword = "airflow"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrPollExhausted    = errors.New("dag run did not finish")
)

// APIError reports a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s %d: %s", e.Method, e.Path, ErrUnexpectedStatus, e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *APIError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Client provides methods for interacting with the Airflow REST API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config holds Airflow client configuration.
type Config struct {
	BaseURL  string // e.g. "http://localhost:8080/api/v1"
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient creates a new Airflow client. Empty fields fall back to the
// package defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}
	if cfg.Password == "" {
		cfg.Password = DefaultPassword
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logger:     logger,
	}
}

// =============================================================================
// Types
// =============================================================================

// DAG run states.
const (
	StateQueued  = "queued"
	StateRunning = "running"
	StateSuccess = "success"
	StateFailed  = "failed"
)

// DAG is the subset of the DAG resource the harness reads.
type DAG struct {
	DAGID    string `json:"dag_id"`
	IsPaused bool   `json:"is_paused"`
}

// DAGRun is a DAG run resource.
type DAGRun struct {
	DAGRunID  string     `json:"dag_run_id"`
	DAGID     string     `json:"dag_id"`
	State     string     `json:"state"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Finished reports whether the run reached a terminal state.
func (r DAGRun) Finished() bool {
	return r.State == StateSuccess || r.State == StateFailed
}

// TaskInstance is a task instance of a DAG run.
type TaskInstance struct {
	TaskID    string   `json:"task_id"`
	State     string   `json:"state"`
	TryNumber int      `json:"try_number"`
	Hostname  string   `json:"hostname"`
	Duration  *float64 `json:"duration,omitempty"`
}

// TaskInstances is a page of task instances.
type TaskInstances struct {
	TaskInstances []TaskInstance `json:"task_instances"`
	TotalEntries  int            `json:"total_entries"`
}

// Health is the /health response.
type Health struct {
	Metadatabase struct {
		Status string `json:"status"`
	} `json:"metadatabase"`
	Scheduler struct {
		Status                   string `json:"status"`
		LatestSchedulerHeartbeat string `json:"latest_scheduler_heartbeat"`
	} `json:"scheduler"`
}

// =============================================================================
// Operations
// =============================================================================

// Health returns the health of the metadatabase and the scheduler.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UnpauseDAG sets is_paused to false on a DAG.
func (c *Client) UnpauseDAG(ctx context.Context, dagID string) (*DAG, error) {
	var dag DAG
	path := "/dags/" + url.PathEscape(dagID)
	if err := c.do(ctx, http.MethodPatch, path, map[string]bool{"is_paused": false}, &dag); err != nil {
		return nil, err
	}
	return &dag, nil
}

// TriggerDAGRun creates a DAG run with the given run id.
func (c *Client) TriggerDAGRun(ctx context.Context, dagID, runID string) (*DAGRun, error) {
	var run DAGRun
	path := "/dags/" + url.PathEscape(dagID) + "/dagRuns"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"dag_run_id": runID}, &run); err != nil {
		return nil, err
	}
	c.logger.Info("dag run triggered", "dag_id", dagID, "dag_run_id", run.DAGRunID, "state", run.State)
	return &run, nil
}

// GetDAGRun returns a DAG run.
func (c *Client) GetDAGRun(ctx context.Context, dagID, runID string) (*DAGRun, error) {
	var run DAGRun
	path := "/dags/" + url.PathEscape(dagID) + "/dagRuns/" + url.PathEscape(runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetTaskInstances returns the task instances of a DAG run.
func (c *Client) GetTaskInstances(ctx context.Context, dagID, runID string) (*TaskInstances, error) {
	var tis TaskInstances
	path := "/dags/" + url.PathEscape(dagID) + "/dagRuns/" + url.PathEscape(runID) + "/taskInstances"
	if err := c.do(ctx, http.MethodGet, path, nil, &tis); err != nil {
		return nil, err
	}
	return &tis, nil
}

// PollOptions bounds WaitForDAGRun.
type PollOptions struct {
	Attempts int           // defaults to 30
	Interval time.Duration // defaults to 1s
}

// WaitForDAGRun polls a DAG run until it succeeds or fails. The last observed
// run is returned together with ErrPollExhausted when attempts run out.
func (c *Client) WaitForDAGRun(ctx context.Context, dagID, runID string, opts PollOptions) (*DAGRun, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 30
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}

	var last *DAGRun
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		run, err := c.GetDAGRun(ctx, dagID, runID)
		if err != nil {
			return last, err
		}
		last = run
		c.logger.Info("dag run state", "dag_id", dagID, "dag_run_id", runID, "state", run.State, "attempt", attempt)
		if run.Finished() {
			return run, nil
		}
		if attempt == opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
	return last, fmt.Errorf("%w: %s/%s still %s after %d attempts", ErrPollExhausted, dagID, runID, last.State, opts.Attempts)
}

// =============================================================================
// Helpers
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, in != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}
