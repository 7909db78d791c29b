package validate

import "fmt"

// Kind is the expected shape of a body field.
type Kind int

// Supported field kinds.
const (
	String Kind = iota
	Number
	StringSlice
)

// Field declares the expected shape of one body field. Optional fields are
// checked only when present.
type Field struct {
	Kind     Kind
	Required bool
}

// Schema maps field names to their declarations.
type Schema map[string]Field

// Violation describes one way the body failed the schema.
type Violation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Check evaluates a decoded JSON body against the schema and returns every
// violation found. An empty result means the body conforms.
func Check(body map[string]any, schema Schema) []Violation {
	var violations []Violation
	for name, field := range schema {
		value, present := body[name]
		if !present {
			if field.Required {
				violations = append(violations, Violation{Field: name, Message: "field is required"})
			}
			continue
		}
		if !matches(value, field.Kind) {
			violations = append(violations, Violation{Field: name, Message: "field has the wrong type"})
		}
	}
	return violations
}

// matches reports whether a decoded JSON value has the declared kind. JSON
// numbers decode as float64.
func matches(value any, kind Kind) bool {
	switch kind {
	case String:
		_, ok := value.(string)
		return ok
	case Number:
		_, ok := value.(float64)
		return ok
	case StringSlice:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Strings converts a validated StringSlice value into a []string.
func Strings(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
