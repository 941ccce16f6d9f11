package openapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-opforms/pkg/types"
)

const (
	extensionOrder   = "x-opforms-order"
	extensionView    = "x-opforms-view"
	extensionDynamic = "x-opforms-dynamic"

	formatSampleID = "sample-id"
	formatDouble   = "double"
)

// ToSchema renders obj as an OpenAPI object schema.
func ToSchema(obj *types.Object) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	if obj == nil {
		return schema
	}

	names := obj.Names()
	schema.Properties = make(openapi3.Schemas, len(names))
	for _, name := range names {
		property, _ := obj.Property(name)
		schema.Properties[name] = openapi3.NewSchemaRef("", propertySchema(property))
		if property.Required() {
			schema.Required = append(schema.Required, name)
		}
	}

	schema.Extensions = map[string]any{extensionOrder: names}
	if obj.Dynamic() {
		schema.Extensions[extensionDynamic] = true
	}
	return schema
}

func propertySchema(property *types.Property) *openapi3.Schema {
	schema := typeSchema(property.Type())
	schema.Default = property.Default()
	if choices := property.Choices(); len(choices) > 0 && len(schema.Enum) == 0 {
		schema.Enum = choices
	}
	if view := property.View(); view != nil {
		schema.Title = view.Label()
		schema.Description = view.Description()

		ext := make(map[string]any, len(view.Descriptor())+1)
		for key, value := range view.Descriptor() {
			ext[key] = value
		}
		ext["kind"] = string(view.Kind())
		if schema.Extensions == nil {
			schema.Extensions = make(map[string]any, 1)
		}
		schema.Extensions[extensionView] = ext
	}
	return schema
}

func typeSchema(node types.TypeNode) *openapi3.Schema {
	switch typ := node.(type) {
	case *types.String:
		return openapi3.NewStringSchema()
	case *types.SampleID:
		return openapi3.NewStringSchema().WithFormat(formatSampleID)
	case *types.Boolean:
		return openapi3.NewBoolSchema()
	case *types.Number:
		var schema *openapi3.Schema
		switch {
		case typ.IsInt():
			schema = openapi3.NewIntegerSchema()
		case typ.IsFloat():
			schema = openapi3.NewFloat64Schema().WithFormat(formatDouble)
		default:
			schema = openapi3.NewFloat64Schema()
		}
		if min, ok := typ.Min(); ok {
			schema.Min = &min
		}
		if max, ok := typ.Max(); ok {
			schema.Max = &max
		}
		return schema
	case *types.Enum:
		values := typ.Values()
		schema := &openapi3.Schema{Enum: values}
		if allStrings(values) {
			schema.Type = &openapi3.Types{openapi3.TypeString}
		}
		return schema
	case *types.List:
		schema := openapi3.NewArraySchema()
		schema.Items = openapi3.NewSchemaRef("", typeSchema(typ.Element()))
		if min, ok := typ.MinItems(); ok {
			schema.MinItems = uint64(min)
		}
		if max, ok := typ.MaxItems(); ok {
			value := uint64(max)
			schema.MaxItems = &value
		}
		return schema
	case *types.Object:
		return ToSchema(typ)
	default:
		return &openapi3.Schema{}
	}
}

func allStrings(values []any) bool {
	for _, value := range values {
		if _, ok := value.(string); !ok {
			return false
		}
	}
	return len(values) > 0
}

var errUnresolvedRef = errors.New("openapi: schema reference is not resolved")

// FromSchema builds an Object from an OpenAPI object schema. Properties are
// defined in x-opforms-order order when present, otherwise sorted by name.
func FromSchema(ref *openapi3.SchemaRef) (*types.Object, error) {
	if ref == nil {
		return types.NewObject(), nil
	}
	if ref.Value == nil {
		return nil, fmt.Errorf("%w: %s", errUnresolvedRef, ref.Ref)
	}
	return objectFromSchema(ref.Value)
}

func objectFromSchema(schema *openapi3.Schema) (*types.Object, error) {
	if !isObjectSchema(schema) {
		return nil, fmt.Errorf("openapi: expected an object schema, got %q", schemaType(schema))
	}

	obj := types.NewObject()
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	for _, name := range propertyOrder(schema) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("openapi: property %q: %w", name, errUnresolvedRef)
		}
		typ, err := typeFromSchema(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", name, err)
		}
		opts, err := propertyOptions(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", name, err)
		}
		if _, ok := required[name]; ok {
			opts = append(opts, types.Required())
		}
		if _, err := obj.DefineProperty(name, typ, opts...); err != nil {
			return nil, err
		}
	}

	if dynamic, _ := schema.Extensions[extensionDynamic].(bool); dynamic {
		obj.MarkDynamic()
	}
	return obj, nil
}

func propertyOrder(schema *openapi3.Schema) []string {
	seen := make(map[string]struct{}, len(schema.Properties))
	var names []string
	for _, name := range stringList(schema.Extensions[extensionOrder]) {
		if _, ok := schema.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	var rest []string
	for name := range schema.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func typeFromSchema(schema *openapi3.Schema) (types.TypeNode, error) {
	if len(schema.Enum) > 0 {
		return types.NewEnum(schema.Enum...)
	}

	switch schemaType(schema) {
	case openapi3.TypeString:
		if schema.Format == formatSampleID {
			return types.NewSampleID(), nil
		}
		return types.NewString(), nil
	case openapi3.TypeBoolean:
		return types.NewBoolean(), nil
	case openapi3.TypeInteger:
		return types.NewNumber(boundOptions(schema, types.AsInt())...), nil
	case openapi3.TypeNumber:
		if schema.Format == formatDouble || schema.Format == "float" {
			return types.NewNumber(boundOptions(schema, types.AsFloat())...), nil
		}
		return types.NewNumber(boundOptions(schema)...), nil
	case openapi3.TypeArray:
		if schema.Items == nil || schema.Items.Value == nil {
			return nil, errors.New("array schema has no resolved items")
		}
		elem, err := typeFromSchema(schema.Items.Value)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		var opts []types.ListOption
		if schema.MinItems > 0 {
			opts = append(opts, types.WithMinItems(int(schema.MinItems)))
		}
		if schema.MaxItems != nil {
			opts = append(opts, types.WithMaxItems(int(*schema.MaxItems)))
		}
		return types.NewList(elem, opts...)
	case openapi3.TypeObject:
		return objectFromSchema(schema)
	default:
		if len(schema.AllOf) == 1 && schema.AllOf[0].Value != nil {
			return typeFromSchema(schema.AllOf[0].Value)
		}
		return nil, fmt.Errorf("unsupported schema type %q", schemaType(schema))
	}
}

func boundOptions(schema *openapi3.Schema, extra ...types.NumberOption) []types.NumberOption {
	opts := append([]types.NumberOption(nil), extra...)
	if schema.Min != nil {
		opts = append(opts, types.WithMin(*schema.Min))
	}
	if schema.Max != nil {
		opts = append(opts, types.WithMax(*schema.Max))
	}
	return opts
}

func propertyOptions(schema *openapi3.Schema) ([]types.PropertyOption, error) {
	var opts []types.PropertyOption
	if schema.Default != nil {
		opts = append(opts, types.WithDefault(schema.Default))
	}
	if raw, ok := schema.Extensions[extensionView]; ok {
		view, err := viewFromExtension(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithView(view))
	}
	if schema.Title != "" {
		opts = append(opts, types.WithLabel(schema.Title))
	}
	if schema.Description != "" {
		opts = append(opts, types.WithDescription(schema.Description))
	}
	return opts, nil
}

func viewFromExtension(raw any) (types.View, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %T", extensionView, raw)
	}
	cfg := viewConfig(fields)

	kind, _ := fields["kind"].(string)
	if kind == "" {
		kind, _ = fields["name"].(string)
	}

	var choices *types.Choices
	switch types.ViewKind(kind) {
	case types.ViewKindView, "":
		return types.NewView(cfg), nil
	case types.ViewKindNotice:
		return types.NewNotice(cfg), nil
	case types.ViewKindHeader:
		return types.NewHeader(cfg), nil
	case types.ViewKindWarning:
		return types.NewWarning(cfg), nil
	case types.ViewKindButton:
		return types.NewButton(cfg), nil
	case types.ViewKindChoices:
		choices = types.NewChoices(cfg)
	case types.ViewKindRadioGroup:
		choices = types.NewRadioGroup(cfg)
	case types.ViewKindDropdown:
		choices = types.NewDropdown(cfg)
	default:
		return nil, fmt.Errorf("%s: unknown view kind %q", extensionView, kind)
	}

	items, _ := fields["choices"].([]any)
	for _, item := range items {
		choice, ok := item.(map[string]any)
		if !ok {
			continue
		}
		choices.AddChoice(choice["value"], viewConfig(choice))
	}
	return choices, nil
}

func viewConfig(fields map[string]any) types.ViewConfig {
	cfg := types.ViewConfig{}
	cfg.Label, _ = fields["label"].(string)
	cfg.Description, _ = fields["description"].(string)
	cfg.Caption, _ = fields["caption"].(string)
	switch space := fields["space"].(type) {
	case int:
		cfg.Space = &space
	case float64:
		value := int(space)
		cfg.Space = &value
	}
	return cfg
}

func isObjectSchema(schema *openapi3.Schema) bool {
	typ := schemaType(schema)
	return typ == openapi3.TypeObject || (typ == "" && len(schema.Properties) > 0)
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, ",")
}

func stringList(raw any) []string {
	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, value := range values {
			if name, ok := value.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}
