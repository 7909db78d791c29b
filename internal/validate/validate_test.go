package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRequiredFields(t *testing.T) {
	schema := Schema{
		"name":     {Kind: String, Required: true},
		"position": {Kind: Number, Required: true},
		"fps":      {Kind: String},
	}

	violations := Check(map[string]any{"name": "the tower"}, schema)
	assert.Len(t, violations, 1)
	assert.Equal(t, "position", violations[0].Field)

	violations = Check(map[string]any{"name": "the tower", "position": float64(3)}, schema)
	assert.Empty(t, violations)
}

func TestCheckOptionalPresentMustMatch(t *testing.T) {
	schema := Schema{"fps": {Kind: String}}

	assert.Empty(t, Check(map[string]any{}, schema))
	assert.Len(t, Check(map[string]any{"fps": float64(60)}, schema), 1)
}

func TestCheckStringSlice(t *testing.T) {
	schema := Schema{"creators": {Kind: StringSlice, Required: true}}

	assert.Empty(t, Check(map[string]any{"creators": []any{"a", "b"}}, schema))
	assert.Len(t, Check(map[string]any{"creators": []any{"a", float64(1)}}, schema), 1)
	assert.Len(t, Check(map[string]any{"creators": "a"}, schema), 1)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings([]any{"a", "b"}))
	assert.Nil(t, Strings("a"))
}
