package tui

import "strings"

// State tracks collected values, prefilled values and server-provided errors
// keyed by dotted property paths. Collected values are kept apart from the
// prefill so only prompted properties are submitted.
type State struct {
	values  map[string]any
	prefill map[string]any
	errors  map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	return &State{
		values:  make(map[string]any),
		prefill: prefill,
		errors:  errs,
	}
}

// Values returns the collected value map.
func (s *State) Values() map[string]any {
	return s.values
}

// ErrorsFor returns the errors attached to a dotted path.
func (s *State) ErrorsFor(path string) []string {
	if len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// Current returns the collected value at path, falling back to the prefill.
func (s *State) Current(path string) (any, bool) {
	if value, ok := getPath(s.values, path); ok {
		return value, true
	}
	return getPath(s.prefill, path)
}

// SetValue writes value at path, creating intermediate maps as needed.
func (s *State) SetValue(path string, value any) {
	segments := strings.Split(path, ".")
	node := s.values
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// Scoped returns a fresh State for one list item under path. Errors recorded
// for item properties ("items.label") are rebased onto the item.
func (s *State) Scoped(path string, prefill map[string]any) *State {
	child := NewState(prefill, nil)
	prefix := path + "."
	for key, messages := range s.errors {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			if child.errors == nil {
				child.errors = make(map[string][]string)
			}
			child.errors[rest] = messages
		}
	}
	return child
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
		if current, ok = node[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}
