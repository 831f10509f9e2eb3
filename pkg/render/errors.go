package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
)

// ErrorMapping splits a validation payload into field errors keyed by dotted
// path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload attaches backend validation messages to form fields. Keys
// are the joined "loc" of a 422 detail entry ("body/patient_info/name"),
// dotted paths or JSON pointers. The leading "body" wrapper and list indexes
// are ignored; a key matching no field, or one of the non-field keys such as
// "__all__", becomes a form-level message. Messages are collected in key
// order so the same payload always renders the same way.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{})
	collectFieldPaths(form.Fields, "", known)

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		path := matchFieldPath(key, known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// matchFieldPath returns the longest known field path the key points at, or
// "" for form-level keys.
func matchFieldPath(key string, known map[string]struct{}) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", "__all__", "non_field_errors", "form", "body":
		return ""
	}

	segments := locSegments(key)
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// locSegments splits a location into field names, dropping the request
// wrapper and numeric list indexes.
func locSegments(key string) []string {
	clean := strings.TrimPrefix(strings.TrimSpace(key), "#")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	segments := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == 0 && strings.EqualFold(part, "body") {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		segments = append(segments, strings.ReplaceAll(part, "~0", "~"))
	}
	return segments
}

func collectFieldPaths(fields []model.Field, prefix string, dest map[string]struct{}) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		path := joinPath(prefix, name)
		dest[path] = struct{}{}
		collectFieldPaths(field.Nested, path, dest)
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
