package validation

import (
	"strings"

	"github.com/goliatone/go-opforms/pkg/types"
)

// Annotate returns a copy of obj in which every property named by an issue is
// marked invalid with the issue message. Issues inside list elements are
// attributed to the list property. Parents of annotated properties report
// invalid through their descendants. obj itself is left untouched.
func Annotate(obj *types.Object, result Result) (*types.Object, error) {
	messages := make(map[string]string, len(result.Issues))
	for _, issue := range result.Issues {
		path := propertyPath(issue.Path)
		if _, seen := messages[path]; !seen {
			messages[path] = issue.Message
		}
	}
	return rebuild("", obj, messages)
}

func rebuild(prefix string, obj *types.Object, messages map[string]string) (*types.Object, error) {
	out := types.NewObject()
	if obj == nil {
		return out, nil
	}
	if obj.Dynamic() {
		out.MarkDynamic()
	}

	for _, name := range obj.Names() {
		property, _ := obj.Property(name)
		path := join(prefix, name)

		typ := property.Type()
		if nested, ok := typ.(*types.Object); ok {
			copied, err := rebuild(path, nested, messages)
			if err != nil {
				return nil, err
			}
			typ = copied
		}

		opts := []types.PropertyOption{
			types.WithDefault(property.Default()),
			types.WithChoices(property.Choices()...),
			types.WithErrorMessage(property.ErrorMessage()),
		}
		if property.Required() {
			opts = append(opts, types.Required())
		}
		if view := property.View(); view != nil {
			opts = append(opts, types.WithView(view))
		}
		if invalid, set := property.InvalidOverride(); set {
			opts = append(opts, types.WithInvalid(invalid))
		}
		if message, ok := messages[path]; ok {
			opts = append(opts, types.WithInvalid(true), types.WithErrorMessage(message))
		}

		copied, err := types.NewProperty(typ, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := out.AddProperty(name, copied); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// propertyPath strips list indexes: "tags[2]" and "items[0].name" both map to
// the list property.
func propertyPath(path string) string {
	if idx := strings.Index(path, "["); idx >= 0 {
		return path[:idx]
	}
	return path
}
