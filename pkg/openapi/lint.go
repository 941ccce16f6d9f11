package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const extensionPrefix = "x-opforms-"

// Violation is one unsupported or malformed x-opforms extension.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Lint reports x-opforms extensions in request and response schemas that the
// bridge would reject or silently ignore. Violations are sorted by location.
func Lint(ctx context.Context, data []byte, opts ...ParseOption) ([]Violation, error) {
	cfg := parseOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	doc, err := loadDocument(ctx, data, cfg)
	if err != nil {
		return nil, err
	}

	var result []Violation
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, method := range methods {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				base := []string{"operation", operationName(method, path, op)}
				if schema := requestSchema(op.RequestBody); schema != nil {
					result = append(result, lintSchema(appendPath(base, "requestBody"), schema)...)
				}
				if schema := responseSchema(op.Responses); schema != nil {
					result = append(result, lintSchema(appendPath(base, "response"), schema)...)
				}
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Location == result[j].Location {
			return result[i].Message < result[j].Message
		}
		return result[i].Location < result[j].Location
	})
	return result, nil
}

func lintSchema(path []string, ref *openapi3.SchemaRef) []Violation {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value
	result := lintExtensions(path, schema)

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, lintSchema(appendPath(path, "properties."+key), schema.Properties[key])...)
	}
	if schema.Items != nil {
		result = append(result, lintSchema(appendPath(path, "items"), schema.Items)...)
	}
	return result
}

func lintExtensions(path []string, schema *openapi3.Schema) []Violation {
	keys := make([]string, 0, len(schema.Extensions))
	for key := range schema.Extensions {
		if strings.HasPrefix(key, extensionPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var result []Violation
	report := func(format string, args ...any) {
		result = append(result, Violation{Location: formatLocation(path), Message: fmt.Sprintf(format, args...)})
	}
	for _, key := range keys {
		value := schema.Extensions[key]
		switch key {
		case extensionView:
			if _, err := viewFromExtension(value); err != nil {
				report("%v", err)
			}
		case extensionOrder:
			names := stringList(value)
			if len(names) == 0 {
				report("%s must be a list of property names", key)
				continue
			}
			for _, name := range names {
				if _, ok := schema.Properties[name]; !ok {
					report("%s names unknown property %q", key, name)
				}
			}
		case extensionDynamic:
			if _, ok := value.(bool); !ok {
				report("%s must be a boolean, found %T", key, value)
			}
		default:
			report("unsupported extension %q (supported: %s)", key,
				strings.Join([]string{extensionDynamic, extensionOrder, extensionView}, ", "))
		}
	}
	return result
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
