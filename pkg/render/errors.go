package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-opforms/pkg/types"
	"github.com/goliatone/go-opforms/pkg/validation"
)

// ErrorMapping holds server-side messages split into property errors, keyed
// by dotted property path, and errors that belong to the form as a whole.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Keys that never address a property.
var formLevelKeys = map[string]struct{}{
	"": {}, "form": {}, "base": {}, "__all__": {},
	"non_field_errors": {}, "non-field-errors": {},
}

// Leading segments that wrap the submitted values in common error payloads.
var envelopeSegments = map[string]struct{}{
	"body": {}, "request": {}, "payload": {}, "data": {}, "attributes": {},
}

// MergeFormErrors joins form-level message lists, trimming blanks and
// dropping repeats while keeping first-seen order.
func MergeFormErrors(existing []string, extras ...string) []string {
	return dedupeMessages(append(append([]string(nil), existing...), extras...))
}

// MapErrorPayload resolves the keys of a server error payload against the
// properties of form. Keys may be dotted paths, JSON pointers ("/body/name")
// or JSONPath-like ("$.items[0].label"); envelope prefixes such as "body" and
// list indexes are ignored, and the deepest matching property wins. Keys that
// match nothing become form errors.
func MapErrorPayload(form *types.Object, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{})
	indexPaths(form, "", known)

	for key, messages := range payload {
		messages = dedupeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		path := resolvePath(key, known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}
	mapping.Form = dedupeMessages(mapping.Form)
	return mapping
}

// FromValidation converts a validation result into the same mapping shape as
// MapErrorPayload so both can feed RenderOptions.
func FromValidation(form *types.Object, result validation.Result) ErrorMapping {
	payload := make(map[string][]string, len(result.Issues))
	for _, issue := range result.Issues {
		payload[issue.Path] = append(payload[issue.Path], issue.Message)
	}
	return MapErrorPayload(form, payload)
}

// Apply copies the mapping into options, merging with errors already present.
func (m ErrorMapping) Apply(options RenderOptions) RenderOptions {
	if len(m.Fields) > 0 {
		merged := make(map[string][]string, len(options.Errors)+len(m.Fields))
		for path, messages := range options.Errors {
			merged[path] = append([]string(nil), messages...)
		}
		for path, messages := range m.Fields {
			merged[path] = dedupeMessages(append(merged[path], messages...))
		}
		options.Errors = merged
	}
	options.FormErrors = MergeFormErrors(options.FormErrors, m.Form...)
	return options
}

// resolvePath returns the deepest known property addressed by key, or "" for
// form-level keys.
func resolvePath(key string, known map[string]struct{}) string {
	if _, ok := formLevelKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return ""
	}
	segments := splitErrorKey(key)
	if len(segments) == 0 {
		return ""
	}

	unwrapped := segments
	for len(unwrapped) > 0 {
		if _, ok := envelopeSegments[strings.ToLower(unwrapped[0])]; !ok {
			break
		}
		unwrapped = unwrapped[1:]
	}

	best := ""
	for _, candidate := range [][]string{segments, unwrapped, withoutIndexes(segments), withoutIndexes(unwrapped)} {
		for end := len(candidate); end > 0; end-- {
			path := strings.Join(candidate[:end], ".")
			if _, ok := known[path]; ok {
				if strings.Count(path, ".") > strings.Count(best, ".") || best == "" {
					best = path
				}
				break
			}
		}
	}
	return best
}

// splitErrorKey tokenizes dotted, bracketed and JSON pointer keys. Pointer
// escapes (~1, ~0) are decoded per segment.
func splitErrorKey(key string) []string {
	key = strings.TrimLeft(strings.TrimSpace(key), "#$./")
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '/' || r == '[' || r == ']'
	})
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		segments = append(segments, strings.ReplaceAll(part, "~0", "~"))
	}
	return segments
}

func withoutIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err != nil {
			out = append(out, segment)
		}
	}
	return out
}

// indexPaths records every property path in obj. List elements share the
// list's path since indexes are stripped before matching.
func indexPaths(node types.TypeNode, prefix string, known map[string]struct{}) {
	switch typ := node.(type) {
	case *types.Object:
		if typ == nil {
			return
		}
		for _, name := range typ.Names() {
			prop, _ := typ.Property(name)
			path := name
			if prefix != "" {
				path = prefix + "." + name
			}
			known[path] = struct{}{}
			indexPaths(prop.Type(), path, known)
		}
	case *types.List:
		indexPaths(typ.Element(), prefix, known)
	}
}

func dedupeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" {
			continue
		}
		if _, dup := seen[message]; dup {
			continue
		}
		seen[message] = struct{}{}
		out = append(out, message)
	}
	return out
}
