// Package schema provides the Compose JSON Schema document used to validate
// rendered deployments: fetched live, pinned from compose-go, or read from disk.
package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	composeschema "github.com/compose-spec/compose-go/v2/schema"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultURL is the Compose Specification schema on the upstream master branch.
const DefaultURL = "https://raw.githubusercontent.com/compose-spec/compose-spec/master/schema/compose-spec.json"

// Source names a Provider implementation.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceEmbedded Source = "embedded"
	SourceFile     Source = "file"
)

var (
	ErrFetchFailed   = errors.New("schema fetch failed")
	ErrUnknownSource = errors.New("unknown schema source")
)

// =============================================================================
// Provider Interface
// =============================================================================

// Provider returns a JSON Schema document.
type Provider interface {
	Schema(ctx context.Context) ([]byte, error)
}

// Config selects and configures a Provider.
type Config struct {
	Source  Source
	URL     string
	File    string
	Timeout time.Duration // 0 means no timeout
}

// NewProvider builds the Provider named by cfg.Source. An empty source is remote.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Source {
	case SourceRemote, "":
		return NewHTTPProvider(cfg.URL, cfg.Timeout), nil
	case SourceEmbedded:
		return EmbeddedProvider{}, nil
	case SourceFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("schema source %q requires a file path", cfg.Source)
		}
		return FileProvider{Path: cfg.File}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// =============================================================================
// HTTP Provider
// =============================================================================

// FetchError reports a failed schema download.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch schema %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch schema %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFetchFailed
}

// HTTPProvider downloads the schema on every call. It never retries.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider for url (DefaultURL when empty).
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	if url == "" {
		url = DefaultURL
	}
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = timeout

	return &HTTPProvider{
		url:        url,
		httpClient: httpClient,
	}
}

// URL returns the schema location.
func (p *HTTPProvider) URL() string {
	return p.url
}

// Schema fetches the schema document.
func (p *HTTPProvider) Schema(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: p.url, StatusCode: resp.StatusCode, Err: ErrFetchFailed}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	return body, nil
}

// =============================================================================
// Embedded Provider
// =============================================================================

// EmbeddedProvider returns the Compose schema pinned by the compose-go module.
type EmbeddedProvider struct{}

// Schema returns the pinned schema.
func (EmbeddedProvider) Schema(context.Context) ([]byte, error) {
	return []byte(composeschema.Schema), nil
}

// =============================================================================
// File Provider
// =============================================================================

// FileProvider reads the schema from a local file.
type FileProvider struct {
	Path string
}

// Schema reads the schema file.
func (p FileProvider) Schema(context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return data, nil
}

// =============================================================================
// Cached Provider
// =============================================================================

// CachedProvider remembers the first successful Schema result of the wrapped
// provider. Failures are not cached, so a later call tries again.
type CachedProvider struct {
	inner Provider

	mu   sync.Mutex
	data []byte
}

// NewCachedProvider wraps inner.
func NewCachedProvider(inner Provider) *CachedProvider {
	return &CachedProvider{inner: inner}
}

// Schema returns the cached document, loading it on first use.
func (p *CachedProvider) Schema(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data != nil {
		return p.data, nil
	}
	data, err := p.inner.Schema(ctx)
	if err != nil {
		return nil, err
	}
	p.data = data
	return data, nil
}
