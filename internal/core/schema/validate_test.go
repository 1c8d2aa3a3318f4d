package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["services"],
  "properties": {
    "services": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["image"],
        "properties": {
          "image": {"type": "string"},
          "restart": {"enum": ["no", "always", "on-failure", "unless-stopped"]},
          "expose": {"type": "array", "items": {"type": ["string", "number"]}}
        }
      }
    }
  },
  "patternProperties": {"^x-": {}},
  "additionalProperties": false
}`

func TestValidate_Valid(t *testing.T) {
	doc := map[string]any{
		"x-anything": "ok",
		"services": map[string]any{
			"redis": map[string]any{
				"image":   "redis:latest",
				"restart": "always",
				"expose":  []any{6379},
			},
		},
	}
	assert.NoError(t, Validate(doc, []byte(serviceSchema)))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		doc  any
	}{
		{"missing required", map[string]any{}},
		{"wrong type", map[string]any{"services": []any{"web"}}},
		{"enum", map[string]any{"services": map[string]any{
			"web": map[string]any{"image": "nginx", "restart": "sometimes"},
		}}},
		{"nested required", map[string]any{"services": map[string]any{
			"web": map[string]any{"command": "serve"},
		}}},
		{"unknown top-level key", map[string]any{"services": map[string]any{}, "bogus": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc, []byte(serviceSchema))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMismatch))

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.NotEmpty(t, vErr.Error())
		})
	}
}

func TestValidate_InvalidSchema(t *testing.T) {
	err := Validate(map[string]any{}, []byte(`{"type": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSchema))

	err = Validate(map[string]any{}, []byte(`{"type": 12}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSchema))
}

func TestCompile_Reuse(t *testing.T) {
	sch, err := Compile([]byte(serviceSchema))
	require.NoError(t, err)

	ok := map[string]any{"services": map[string]any{"a": map[string]any{"image": "x"}}}
	bad := map[string]any{"services": map[string]any{"a": map[string]any{}}}

	assert.NoError(t, ValidateWith(sch, ok))
	assert.Error(t, ValidateWith(sch, bad))
}
