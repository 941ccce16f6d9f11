// Package graphql renders operator input forms as GraphQL input object types.
package graphql

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/types"
)

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// TypeName converts an operator or property name to a GraphQL type name:
// "export_samples" becomes "ExportSamples".
func TypeName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "T" + out
	}
	return out
}

type builder struct {
	defs  ast.DefinitionList
	names map[string]struct{}
}

// InputDefinitions converts obj into an input object named
// TypeName(name)+"Input", followed by the nested input and enum types it uses.
func InputDefinitions(name string, obj *types.Object) (ast.DefinitionList, error) {
	b := &builder{names: make(map[string]struct{})}
	if _, err := b.input(TypeName(name)+"Input", obj); err != nil {
		return nil, err
	}
	return b.defs, nil
}

// SchemaDocument collects the input types of every operator.
func SchemaDocument(ops ...operator.Operator) (*ast.SchemaDocument, error) {
	sorted := append([]operator.Operator(nil), ops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	b := &builder{names: make(map[string]struct{})}
	for _, op := range sorted {
		if _, err := b.input(TypeName(op.Name)+"Input", op.Inputs); err != nil {
			return nil, fmt.Errorf("graphql: operator %q: %w", op.Name, err)
		}
	}
	return &ast.SchemaDocument{Definitions: b.defs}, nil
}

// SDL formats the operators' input types and checks that the output parses.
func SDL(ops ...operator.Operator) (string, error) {
	doc, err := SchemaDocument(ops...)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)

	sdl := buf.String()
	if _, err := parser.ParseSchema(&ast.Source{Name: "opforms.graphql", Input: sdl}); err != nil {
		return "", fmt.Errorf("graphql: generated schema does not parse: %w", err)
	}
	return sdl, nil
}

func (b *builder) claim(name string) error {
	if _, exists := b.names[name]; exists {
		return fmt.Errorf("graphql: type name %q generated twice", name)
	}
	b.names[name] = struct{}{}
	return nil
}

func (b *builder) input(name string, obj *types.Object) (string, error) {
	if err := b.claim(name); err != nil {
		return "", err
	}
	def := &ast.Definition{Kind: ast.InputObject, Name: name}
	b.defs = append(b.defs, def)

	if obj == nil {
		return name, nil
	}
	base := strings.TrimSuffix(name, "Input")
	for _, propName := range obj.Names() {
		if !nameRE.MatchString(propName) {
			return "", fmt.Errorf("graphql: property %q is not a valid field name", propName)
		}
		prop, _ := obj.Property(propName)
		typ, err := b.fieldType(base+TypeName(propName), prop.Type())
		if err != nil {
			return "", fmt.Errorf("graphql: property %q: %w", propName, err)
		}
		if prop.Required() {
			typ.NonNull = true
		}
		field := &ast.FieldDefinition{
			Name:         propName,
			Description:  description(prop),
			Type:         typ,
			DefaultValue: literal(prop.Default(), prop.Type()),
		}
		def.Fields = append(def.Fields, field)
	}
	return name, nil
}

func (b *builder) fieldType(name string, node types.TypeNode) (*ast.Type, error) {
	switch typ := node.(type) {
	case *types.String:
		return ast.NamedType("String", nil), nil
	case *types.SampleID:
		return ast.NamedType("ID", nil), nil
	case *types.Boolean:
		return ast.NamedType("Boolean", nil), nil
	case *types.Number:
		if typ.IsInt() {
			return ast.NamedType("Int", nil), nil
		}
		return ast.NamedType("Float", nil), nil
	case *types.Enum:
		return b.enum(name, typ.Values())
	case *types.List:
		elem, err := b.fieldType(name, typ.Element())
		if err != nil {
			return nil, err
		}
		elem.NonNull = true
		return ast.ListType(elem, nil), nil
	case *types.Object:
		inputName, err := b.input(name+"Input", typ)
		if err != nil {
			return nil, err
		}
		return ast.NamedType(inputName, nil), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", node)
	}
}

// enum emits a GraphQL enum when every value is a usable enum name; other
// value sets fall back to the scalar they share.
func (b *builder) enum(name string, values []any) (*ast.Type, error) {
	if scalar := scalarFor(values); scalar != "" {
		return ast.NamedType(scalar, nil), nil
	}
	if err := b.claim(name); err != nil {
		return nil, err
	}
	def := &ast.Definition{Kind: ast.Enum, Name: name}
	for _, value := range values {
		def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: value.(string)})
	}
	b.defs = append(b.defs, def)
	return ast.NamedType(name, nil), nil
}

func scalarFor(values []any) string {
	names := true
	numbers := true
	for _, value := range values {
		switch v := value.(type) {
		case string:
			numbers = false
			if !isEnumName(v) {
				names = false
			}
		case int, int64, float64:
			names = false
		default:
			names = false
			numbers = false
		}
	}
	switch {
	case names:
		return ""
	case numbers:
		return "Float"
	default:
		return "String"
	}
}

func isEnumName(value string) bool {
	switch value {
	case "true", "false", "null":
		return false
	}
	return nameRE.MatchString(value)
}

func description(prop *types.Property) string {
	view := prop.View()
	if view == nil {
		return ""
	}
	if view.Description() != "" {
		return view.Description()
	}
	return view.Label()
}

func literal(value any, node types.TypeNode) *ast.Value {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case bool:
		return &ast.Value{Kind: ast.BooleanValue, Raw: strconv.FormatBool(v)}
	case int:
		return &ast.Value{Kind: ast.IntValue, Raw: strconv.Itoa(v)}
	case int64:
		return &ast.Value{Kind: ast.IntValue, Raw: strconv.FormatInt(v, 10)}
	case float64:
		if num, ok := node.(*types.Number); ok && num.IsInt() && v == float64(int64(v)) {
			return &ast.Value{Kind: ast.IntValue, Raw: strconv.FormatInt(int64(v), 10)}
		}
		return &ast.Value{Kind: ast.FloatValue, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
	case string:
		if enum, ok := node.(*types.Enum); ok && scalarFor(enum.Values()) == "" {
			return &ast.Value{Kind: ast.EnumValue, Raw: v}
		}
		return &ast.Value{Kind: ast.StringValue, Raw: v}
	case []any:
		var elem types.TypeNode
		if list, ok := node.(*types.List); ok {
			elem = list.Element()
		}
		out := &ast.Value{Kind: ast.ListValue}
		for _, item := range v {
			child := literal(item, elem)
			if child == nil {
				return nil
			}
			out.Children = append(out.Children, &ast.ChildValue{Value: child})
		}
		return out
	default:
		return nil
	}
}
