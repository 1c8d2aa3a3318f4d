package selection

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrInvalidChoice      = errors.New("invalid choice")
	ErrInvalidVersion     = errors.New("invalid semantic version")
	ErrUnsupportedVersion = errors.New("unsupported Airflow version")
)

// InvalidChoiceError reports a value outside an enumerated set.
type InvalidChoiceError struct {
	Field   string
	Value   string
	Choices []string
}

func (e *InvalidChoiceError) Error() string {
	quoted := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("argument %s: invalid choice: '%s' (choose from %s)",
		e.Field, e.Value, strings.Join(quoted, ", "))
}

func (e *InvalidChoiceError) Unwrap() error {
	return ErrInvalidChoice
}

// UnsupportedVersionError reports an Airflow version below MinimumAirflowVersion.
type UnsupportedVersionError struct {
	Version string
	Minimum string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("Unsupported Airflow version [%s]. At least version %s is required.", e.Version, e.Minimum)
}

func (e *UnsupportedVersionError) Unwrap() error {
	return ErrUnsupportedVersion
}
