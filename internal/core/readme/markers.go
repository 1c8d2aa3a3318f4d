// Package readme splices generated text into documentation between marker
// comments. All functions are pure; the caller reads and writes files.
package readme

import (
	"errors"
	"fmt"
	"strings"
)

// Marker pairs used in README.md.
const (
	UsageStart          = "<!-- USAGE_START -->"
	UsageEnd            = "<!-- USAGE_END -->"
	AirflowVersionStart = "<!-- AIRFLOW_VERSION_START -->"
	AirflowVersionEnd   = "<!-- AIRFLOW_VERSION_END -->"
)

var (
	ErrMarkerNotFound = errors.New("marker not found")
	ErrInvalidPin     = errors.New("invalid pinned requirement")
)

// ReplaceBetweenMarkers replaces the text between the first start marker and
// the next end marker with body. The markers themselves are kept; content
// outside them is untouched.
func ReplaceBetweenMarkers(content, start, end, body string) (string, error) {
	i := strings.Index(content, start)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrMarkerNotFound, start)
	}
	bodyStart := i + len(start)
	j := strings.Index(content[bodyStart:], end)
	if j < 0 {
		return "", fmt.Errorf("%w: %s", ErrMarkerNotFound, end)
	}
	bodyEnd := bodyStart + j
	return content[:bodyStart] + body + content[bodyEnd:], nil
}

// UsageSection formats help output as the fenced block placed between the
// usage markers.
func UsageSection(help string) string {
	return "\n```\n" + strings.TrimRight(help, "\n") + "\n```\n"
}

// SyncUsage places help between the usage markers.
func SyncUsage(content, help string) (string, error) {
	return ReplaceBetweenMarkers(content, UsageStart, UsageEnd, UsageSection(help))
}

// SyncVersion places version between the Airflow version markers and
// normalises the file to end with a single newline.
func SyncVersion(content, version string) (string, error) {
	updated, err := ReplaceBetweenMarkers(content, AirflowVersionStart, AirflowVersionEnd, version)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(updated) + "\n", nil
}

// ParsePinnedVersion extracts the version from the first requirement line of
// the form "name==version". Blank lines and comments are skipped.
func ParsePinnedVersion(requirements string) (string, error) {
	for _, line := range strings.Split(requirements, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, version, ok := strings.Cut(line, "==")
		version = strings.TrimSpace(version)
		if !ok || strings.TrimSpace(name) == "" || version == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPin, line)
		}
		return version, nil
	}
	return "", fmt.Errorf("%w: no requirement found", ErrInvalidPin)
}
