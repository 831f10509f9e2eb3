package tui

import (
	"fmt"
	"strings"
)

// State tracks collected values keyed by dotted path, plus the errors a
// previous submission returned for them.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors. Prefill keys are
// dotted paths, the same keys render.RenderOptions.Values uses.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	state := &State{
		values: make(map[string]any),
		errors: cloneErrors(errs),
	}
	for path, value := range prefill {
		_ = state.SetValue(path, value)
	}
	return state
}

// Values returns the nested value tree (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a dotted path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// GetValue resolves a dotted path into the values tree.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return getPath(s.values, path)
}

// SetValue writes a value using a dotted path, creating intermediate maps as
// needed, and clears errors recorded for the path.
func (s *State) SetValue(path string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if err := setPath(s.values, path, value); err != nil {
		return err
	}
	delete(s.errors, path)
	return nil
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func setPath(root map[string]any, path string, value any) error {
	if path == "" {
		return fmt.Errorf("tui: empty path")
	}
	segments := strings.Split(path, ".")
	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			if _, exists := node[segment]; exists {
				return fmt.Errorf("tui: %q is not an object in path %q", segment, path)
			}
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}
