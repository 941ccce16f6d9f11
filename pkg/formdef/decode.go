package formdef

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-opforms/pkg/types"
)

func decodeObject(node *yaml.Node) (*types.Object, error) {
	obj := types.NewObject()
	if node == nil || node.Kind == 0 {
		return obj, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}

	err := eachPair(node, func(name string, value *yaml.Node) error {
		typ, opts, err := decodeProperty(value)
		if err != nil {
			return fmt.Errorf("line %d: property %q: %w", value.Line, name, err)
		}
		_, err = obj.DefineProperty(name, typ, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeProperty accepts either a mapping or a bare type name ("name: string").
func decodeProperty(node *yaml.Node) (types.TypeNode, []types.PropertyOption, error) {
	raw, err := decodePropertyFile(node)
	if err != nil {
		return nil, nil, err
	}
	typ, err := decodeType(raw)
	if err != nil {
		return nil, nil, err
	}

	var opts []types.PropertyOption
	if raw.Label != "" {
		opts = append(opts, types.WithLabel(raw.Label))
	}
	if raw.Description != "" {
		opts = append(opts, types.WithDescription(raw.Description))
	}
	if raw.Required {
		opts = append(opts, types.Required())
	}
	if raw.Default != nil {
		opts = append(opts, types.WithDefault(raw.Default))
	}
	if raw.Choices != nil {
		opts = append(opts, types.WithChoices(raw.Choices...))
	}
	if raw.ErrorMessage != "" {
		opts = append(opts, types.WithErrorMessage(raw.ErrorMessage))
	}
	if raw.Invalid != nil {
		opts = append(opts, types.WithInvalid(*raw.Invalid))
	}
	if raw.View != nil {
		view, err := decodeView(*raw.View)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, types.WithView(view))
	}
	return typ, opts, nil
}

func decodePropertyFile(node *yaml.Node) (propertyFile, error) {
	if node.Kind == yaml.ScalarNode {
		return propertyFile{Type: node.Value}, nil
	}
	var raw propertyFile
	if err := node.Decode(&raw); err != nil {
		return propertyFile{}, err
	}
	return raw, nil
}

func decodeType(raw propertyFile) (types.TypeNode, error) {
	kind := strings.ToLower(strings.TrimSpace(raw.Type))
	if kind == "" && raw.Properties.Kind != 0 {
		kind = "object"
	}

	switch kind {
	case "string", "str":
		return types.NewString(), nil
	case "boolean", "bool":
		return types.NewBoolean(), nil
	case "int", "integer":
		return types.NewNumber(numberOptions(raw, types.AsInt())...), nil
	case "float":
		return types.NewNumber(numberOptions(raw, types.AsFloat())...), nil
	case "number":
		return types.NewNumber(numberOptions(raw)...), nil
	case "enum":
		return types.NewEnum(raw.Values...)
	case "sample_id", "sampleid":
		return types.NewSampleID(), nil
	case "list", "array":
		if raw.Element == nil {
			return nil, fmt.Errorf("list requires an element")
		}
		elemRaw, err := decodePropertyFile(raw.Element)
		if err != nil {
			return nil, fmt.Errorf("element: %w", err)
		}
		elem, err := decodeType(elemRaw)
		if err != nil {
			return nil, fmt.Errorf("element: %w", err)
		}
		var opts []types.ListOption
		if raw.MinItems != nil {
			opts = append(opts, types.WithMinItems(*raw.MinItems))
		}
		if raw.MaxItems != nil {
			opts = append(opts, types.WithMaxItems(*raw.MaxItems))
		}
		return types.NewList(elem, opts...)
	case "object":
		obj, err := decodeObject(&raw.Properties)
		if err != nil {
			return nil, err
		}
		if raw.Dynamic {
			obj.MarkDynamic()
		}
		return obj, nil
	case "":
		return nil, fmt.Errorf("type is required")
	default:
		return nil, fmt.Errorf("unknown type %q", raw.Type)
	}
}

func numberOptions(raw propertyFile, extra ...types.NumberOption) []types.NumberOption {
	opts := append([]types.NumberOption(nil), extra...)
	if raw.Min != nil {
		opts = append(opts, types.WithMin(*raw.Min))
	}
	if raw.Max != nil {
		opts = append(opts, types.WithMax(*raw.Max))
	}
	return opts
}

func decodeView(raw viewFile) (types.View, error) {
	cfg := types.ViewConfig{
		Label:       raw.Label,
		Description: raw.Description,
		Caption:     raw.Caption,
		Space:       raw.Space,
	}

	var choices *types.Choices
	switch strings.ToLower(strings.TrimSpace(raw.Kind)) {
	case "", "view":
		return types.NewView(cfg), nil
	case "notice":
		return types.NewNotice(cfg), nil
	case "header":
		return types.NewHeader(cfg), nil
	case "warning":
		return types.NewWarning(cfg), nil
	case "button":
		return types.NewButton(cfg), nil
	case "choices":
		choices = types.NewChoices(cfg)
	case "radio", "radiogroup", "radio_group":
		choices = types.NewRadioGroup(cfg)
	case "dropdown", "select":
		choices = types.NewDropdown(cfg)
	default:
		return nil, fmt.Errorf("unknown view kind %q", raw.Kind)
	}

	for _, choice := range raw.Choices {
		choices.AddChoice(choice.Value, types.ViewConfig{
			Label:       choice.Label,
			Description: choice.Description,
			Caption:     choice.Caption,
			Space:       choice.Space,
		})
	}
	return choices, nil
}
