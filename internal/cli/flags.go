package cli

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/spf13/pflag"

	"github.com/artpar/airflow-compose/internal/core/selection"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(def string, choices []string) *choiceValue {
	return &choiceValue{value: def, choices: choices}
}

func (c *choiceValue) String() string { return c.value }

func (c *choiceValue) Set(s string) error {
	for _, choice := range c.choices {
		if s == choice {
			c.value = s
			return nil
		}
	}
	return fmt.Errorf("invalid choice: %q (choose from %s)", s, strings.Join(c.choices, ", "))
}

func (c *choiceValue) Type() string {
	return "{" + strings.Join(c.choices, "|") + "}"
}

// versionValue is a flag holding a strict semantic version.
type versionValue struct {
	version semver.Version
	set     bool
}

var _ pflag.Value = (*versionValue)(nil)

func (v *versionValue) String() string {
	if !v.set {
		return ""
	}
	return v.version.String()
}

func (v *versionValue) Set(s string) error {
	parsed, err := selection.ParseVersion(s)
	if err != nil {
		return err
	}
	v.version = parsed
	v.set = true
	return nil
}

func (v *versionValue) Type() string { return "SEMVER" }
