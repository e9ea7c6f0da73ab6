// Package render turns binding results into the field-level and form-level
// messages a renderer shows next to inputs.
package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/transformer"
)

// ErrorMapping splits validation messages into field-level messages keyed by
// dotted field path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// Empty reports whether the mapping holds no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors concatenates and normalises form-level messages, trimming
// whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapBindingErrors maps the errors returned while binding submitted values,
// keyed by field path. Transformation failures become user-facing messages;
// they land on the field, or on the form when the path is a form-level key.
// Any other error is a programming or infrastructure failure: the first one,
// in path order, is returned instead of being shown to the user.
func MapBindingErrors(results map[string]error) (ErrorMapping, error) {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		err := results[path]
		if err == nil {
			continue
		}
		var failed *transformer.TransformationFailedError
		if !errors.As(err, &failed) {
			return ErrorMapping{}, fmt.Errorf("render: bind %s: %w", path, err)
		}

		trimmed := strings.TrimSpace(path)
		if isFormLevelKey(trimmed) {
			mapping.Form = append(mapping.Form, failed.Message())
			continue
		}
		mapping.Fields[trimmed] = normalizeMessages(append(mapping.Fields[trimmed], failed.Message()))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping, nil
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
