package types

import (
	"fmt"
	"strings"
)

// FieldError is one rejected field of a plan record or task descriptor
type FieldError struct {
	Field   string // path like "plan.tasks[2].kind"
	Message string
	Value   any // offending value, nil when the field is absent
}

func (e FieldError) Error() string {
	if e.Value == nil {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (got %s)", e.Field, e.Message, formatValue(e.Value))
}

// FieldErrors collects every problem found in one validation pass
type FieldErrors []FieldError

// Add records a problem with field
func (f *FieldErrors) Add(field, message string, value any) {
	*f = append(*f, FieldError{Field: field, Message: message, Value: value})
}

// Err returns nil when nothing was recorded
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f FieldErrors) Error() string {
	parts := make([]string, len(f))
	for i, e := range f {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case TaskKind:
		return fmt.Sprintf("%q", string(v))
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
