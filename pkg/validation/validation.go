// Package validation checks submitted values against an operator's input form
// and projects the outcome back onto the form as invalid properties.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goliatone/go-opforms/internal/telemetry"
	"github.com/goliatone/go-opforms/pkg/types"
)

// Issue is one problem found in the submitted values.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures a validation outcome.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Option tunes Validate.
type Option func(*config)

type config struct {
	allowUnknown bool
}

// AllowUnknownFields stops values without a matching property from being
// reported.
func AllowUnknownFields() Option {
	return func(c *config) {
		c.allowUnknown = true
	}
}

// Validate checks values against obj. Missing required properties fall back
// to their default before being reported.
func Validate(ctx context.Context, obj *types.Object, values map[string]any, opts ...Option) Result {
	_, span := telemetry.Start(ctx, "validation.Validate")
	defer span.End()

	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	v := validator{cfg: cfg}
	if obj != nil {
		v.object("", obj, values, nil)
	}

	span.SetAttributes(attribute.Int("validation.issues", len(v.issues)))
	return Result{Valid: len(v.issues) == 0, Issues: v.issues}
}

type validator struct {
	cfg    config
	issues []Issue
}

func (v *validator) report(path string, property *types.Property, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if property != nil && property.ErrorMessage() != types.DefaultErrorMessage {
		message = property.ErrorMessage()
	}
	v.issues = append(v.issues, Issue{Path: path, Field: fieldName(path), Message: message})
}

// object checks values against obj. inherited is the default map of the
// enclosing Object property; a child without a default of its own takes its
// entry from it.
func (v *validator) object(prefix string, obj *types.Object, values, inherited map[string]any) {
	for _, name := range obj.Names() {
		property, _ := obj.Property(name)
		path := join(prefix, name)

		fallback := property.Default()
		if fallback == nil {
			fallback = inherited[name]
		}
		value, present := values[name]
		if !present || value == nil {
			if property.Required() && fallback == nil {
				v.report(path, property, "%s is required", path)
			}
			continue
		}
		if v.value(path, property, property.Type(), value, fallback) {
			v.choices(path, property, value)
		}
	}

	if v.cfg.allowUnknown {
		return
	}
	var unknown []string
	for name := range values {
		if _, ok := obj.Property(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		path := join(prefix, name)
		v.report(path, nil, "%s is not defined", path)
	}
}

// value reports type mismatches and returns true when value has the right
// shape.
func (v *validator) value(path string, property *types.Property, node types.TypeNode, value, fallback any) bool {
	switch typ := node.(type) {
	case *types.String, *types.SampleID:
		if _, ok := value.(string); !ok {
			v.report(path, property, "%s must be a string", path)
			return false
		}
	case *types.Boolean:
		if _, ok := value.(bool); !ok {
			v.report(path, property, "%s must be a boolean", path)
			return false
		}
	case *types.Number:
		return v.number(path, property, typ, value)
	case *types.Enum:
		if !contains(typ.Values(), value) {
			v.report(path, property, "%s must be one of %s", path, formatValues(typ.Values()))
			return false
		}
	case *types.List:
		return v.list(path, property, typ, value)
	case *types.Object:
		nested, ok := value.(map[string]any)
		if !ok {
			v.report(path, property, "%s must be an object", path)
			return false
		}
		defaults, _ := fallback.(map[string]any)
		v.object(path, typ, nested, defaults)
	}
	return true
}

func (v *validator) number(path string, property *types.Property, typ *types.Number, value any) bool {
	number, ok := toFloat(value)
	if !ok {
		v.report(path, property, "%s must be a number", path)
		return false
	}
	if typ.IsInt() && number != float64(int64(number)) {
		v.report(path, property, "%s must be an integer", path)
		return false
	}
	if min, ok := typ.Min(); ok && number < min {
		v.report(path, property, "%s must be >= %v", path, min)
		return false
	}
	if max, ok := typ.Max(); ok && number > max {
		v.report(path, property, "%s must be <= %v", path, max)
		return false
	}
	return true
}

func (v *validator) list(path string, property *types.Property, typ *types.List, value any) bool {
	items, ok := toSlice(value)
	if !ok {
		v.report(path, property, "%s must be a list", path)
		return false
	}
	if min, ok := typ.MinItems(); ok && len(items) < min {
		v.report(path, property, "%s needs at least %d items", path, min)
		return false
	}
	if max, ok := typ.MaxItems(); ok && len(items) > max {
		v.report(path, property, "%s allows at most %d items", path, max)
		return false
	}
	valid := true
	for idx, item := range items {
		if !v.value(fmt.Sprintf("%s[%d]", path, idx), property, typ.Element(), item, nil) {
			valid = false
		}
	}
	return valid
}

func (v *validator) choices(path string, property *types.Property, value any) {
	allowed := property.Choices()
	if len(allowed) == 0 {
		return
	}
	if !contains(allowed, value) {
		v.report(path, property, "%s must be one of %s", path, formatValues(allowed))
	}
}

func contains(values []any, value any) bool {
	for _, candidate := range values {
		if equal(candidate, value) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for idx := range items {
		items[idx] = rv.Index(idx).Interface()
	}
	return items, true
}

func formatValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprint(value))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func fieldName(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	if idx := strings.Index(path, "["); idx >= 0 {
		path = path[:idx]
	}
	return path
}
