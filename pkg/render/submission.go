package render

import (
	"net/url"
	"sort"
	"strings"
)

// DecodeSubmission folds dotted form names into the nested value tree used as
// the request document, e.g. "patient_info.additionalProp1.occupation=x"
// becomes {"patient_info":{"additionalProp1":{"occupation":"x"}}}. Repeated
// names keep the last value, matching what a single text input submits.
// Names that collide with an existing leaf are dropped.
func DecodeSubmission(values url.Values) map[string]any {
	out := make(map[string]any)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entries := values[name]
		if len(entries) == 0 {
			continue
		}
		segments := splitPath(name)
		if len(segments) == 0 {
			continue
		}
		setPath(out, segments, entries[len(entries)-1])
	}
	return out
}

// FlattenValues is the inverse of DecodeSubmission: it turns a nested value
// tree into dotted paths suitable for RenderOptions.Values.
func FlattenValues(tree map[string]any) map[string]any {
	out := make(map[string]any)
	flatten("", tree, out)
	return out
}

func flatten(prefix string, tree map[string]any, out map[string]any) {
	for key, value := range tree {
		path := joinPath(prefix, key)
		if nested, ok := value.(map[string]any); ok {
			flatten(path, nested, out)
			continue
		}
		out[path] = value
	}
}

func splitPath(name string) []string {
	var segments []string
	for _, part := range strings.Split(strings.TrimSpace(name), ".") {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func setPath(target map[string]any, segments []string, value string) {
	current := target
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			child := make(map[string]any)
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return
		}
		current = child
	}
	last := segments[len(segments)-1]
	if _, isMap := current[last].(map[string]any); isMap {
		return
	}
	current[last] = value
}
