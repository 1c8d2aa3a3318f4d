package selection

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// ParseExecutor validates an executor name.
func ParseExecutor(value string) (Executor, error) {
	for _, e := range Executors {
		if string(e) == value {
			return e, nil
		}
	}
	return "", &InvalidChoiceError{Field: "--executor", Value: value, Choices: ExecutorChoices()}
}

// ParseDBBackend validates a database backend name. An empty value selects
// DefaultDBBackend.
func ParseDBBackend(value string) (DBBackend, error) {
	if value == "" {
		return DefaultDBBackend, nil
	}
	for _, b := range DBBackends {
		if string(b) == value {
			return b, nil
		}
	}
	return "", &InvalidChoiceError{Field: "--db-backend", Value: value, Choices: DBBackendChoices()}
}

// ParseVersion parses a strict semantic version ("2.5.0", not "2.5").
func ParseVersion(value string) (semver.Version, error) {
	v, err := semver.Parse(value)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%w %q: %v", ErrInvalidVersion, value, err)
	}
	return v, nil
}

// CheckSupported returns an *UnsupportedVersionError when v is older than
// MinimumAirflowVersion.
func CheckSupported(v semver.Version) error {
	if v.LT(MinimumAirflowVersion) {
		return &UnsupportedVersionError{Version: v.String(), Minimum: MinimumAirflowVersion.String()}
	}
	return nil
}

// New parses and validates all three choices.
// Choice and syntax errors are returned before the version floor is checked.
func New(executor, airflowVersion, dbBackend string) (Selection, error) {
	e, err := ParseExecutor(executor)
	if err != nil {
		return Selection{}, err
	}
	b, err := ParseDBBackend(dbBackend)
	if err != nil {
		return Selection{}, err
	}
	v, err := ParseVersion(airflowVersion)
	if err != nil {
		return Selection{}, err
	}
	if err := CheckSupported(v); err != nil {
		return Selection{}, err
	}
	return Selection{Executor: e, AirflowVersion: v, DBBackend: b}, nil
}

// ExecutorChoices returns the executor names as strings.
func ExecutorChoices() []string {
	out := make([]string, len(Executors))
	for i, e := range Executors {
		out[i] = string(e)
	}
	return out
}

// DBBackendChoices returns the backend names as strings.
func DBBackendChoices() []string {
	out := make([]string, len(DBBackends))
	for i, b := range DBBackends {
		out[i] = string(b)
	}
	return out
}

// All returns every executor/backend combination for one version.
func All(v semver.Version) []Selection {
	out := make([]Selection, 0, len(Executors)*len(DBBackends))
	for _, e := range Executors {
		for _, b := range DBBackends {
			out = append(out, Selection{Executor: e, AirflowVersion: v, DBBackend: b})
		}
	}
	return out
}
