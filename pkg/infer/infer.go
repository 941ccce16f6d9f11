// Package infer derives an input form from a sample JSON payload.
package infer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/goliatone/go-opforms/internal/labels"
	"github.com/goliatone/go-opforms/pkg/types"
)

// Option tunes inference.
type Option func(*config)

type config struct {
	defaults bool
	labels   bool
	required bool
}

// WithDefaults uses the sample's scalar values as property defaults.
func WithDefaults() Option {
	return func(c *config) { c.defaults = true }
}

// WithLabels derives a label for every property from its name.
func WithLabels() Option {
	return func(c *config) { c.labels = true }
}

// WithoutRequired leaves every property optional. By default keys holding a
// non-null value are required.
func WithoutRequired() Option {
	return func(c *config) { c.required = false }
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// FromSample parses data and returns an Object whose properties follow the
// sample's keys in document order. The root must be a JSON object.
func FromSample(data []byte, opts ...Option) (*types.Object, error) {
	cfg := config{required: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("infer: parse sample: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("infer: sample root must be an object, got %s", v.Type())
	}

	s, err := shapeOf(v, "")
	if err != nil {
		return nil, err
	}
	return cfg.object(s)
}

// shape is the inferred structure of a JSON value before it is turned into
// type nodes; list elements are merged into one shape.
type shape struct {
	kind   types.Kind
	isInt  bool
	value  any
	names  []string
	fields map[string]*shape
	elem   *shape
	null   bool
}

func shapeOf(v *fastjson.Value, key string) (*shape, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		s := &shape{kind: types.KindObject, fields: make(map[string]*shape)}
		var visitErr error
		o.Visit(func(k []byte, child *fastjson.Value) {
			if visitErr != nil {
				return
			}
			name := string(k)
			cs, err := shapeOf(child, name)
			if err != nil {
				visitErr = fmt.Errorf("%s: %w", name, err)
				return
			}
			if _, dup := s.fields[name]; !dup {
				s.names = append(s.names, name)
			}
			s.fields[name] = cs
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return s, nil
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		s := &shape{kind: types.KindList}
		for _, item := range items {
			es, err := shapeOf(item, key)
			if err != nil {
				return nil, err
			}
			s.elem = merge(s.elem, es)
		}
		return s, nil
	case fastjson.TypeString:
		raw := string(v.GetStringBytes())
		if looksLikeID(key, raw) {
			return &shape{kind: types.KindSampleID, value: raw}, nil
		}
		return &shape{kind: types.KindString, value: raw}, nil
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return &shape{kind: types.KindNumber, isInt: true, value: int(i)}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return &shape{kind: types.KindNumber, value: f}, nil
	case fastjson.TypeTrue:
		return &shape{kind: types.KindBoolean, value: true}, nil
	case fastjson.TypeFalse:
		return &shape{kind: types.KindBoolean, value: false}, nil
	case fastjson.TypeNull:
		return &shape{null: true}, nil
	}
	return nil, errors.New("infer: unexpected JSON value")
}

// merge combines two element shapes. Incompatible kinds degrade to String.
func merge(a, b *shape) *shape {
	switch {
	case a == nil:
		return b
	case b == nil || b.null:
		return a
	case a.null:
		return b
	}

	if a.kind != b.kind {
		return &shape{kind: types.KindString}
	}

	switch a.kind {
	case types.KindNumber:
		return &shape{kind: types.KindNumber, isInt: a.isInt && b.isInt}
	case types.KindList:
		return &shape{kind: types.KindList, elem: merge(a.elem, b.elem)}
	case types.KindObject:
		out := &shape{kind: types.KindObject, fields: make(map[string]*shape)}
		for _, src := range []*shape{a, b} {
			for _, name := range src.names {
				if existing, ok := out.fields[name]; ok {
					out.fields[name] = merge(existing, src.fields[name])
					continue
				}
				out.names = append(out.names, name)
				out.fields[name] = src.fields[name]
			}
		}
		return out
	default:
		return &shape{kind: a.kind}
	}
}

func (c config) object(s *shape) (*types.Object, error) {
	obj := types.NewObject()
	for _, name := range s.names {
		field := s.fields[name]
		typ, err := c.typeNode(field)
		if err != nil {
			return nil, fmt.Errorf("infer: %s: %w", name, err)
		}

		var opts []types.PropertyOption
		if c.required && !field.null {
			opts = append(opts, types.Required())
		}
		if c.defaults && field.value != nil {
			opts = append(opts, types.WithDefault(field.value))
		}
		if c.labels {
			opts = append(opts, types.WithLabel(labels.FromName(name)))
		}
		if _, err := obj.DefineProperty(name, typ, opts...); err != nil {
			return nil, fmt.Errorf("infer: %w", err)
		}
	}
	return obj, nil
}

func (c config) typeNode(s *shape) (types.TypeNode, error) {
	if s == nil || s.null {
		return types.NewString(), nil
	}
	switch s.kind {
	case types.KindString:
		return types.NewString(), nil
	case types.KindSampleID:
		return types.NewSampleID(), nil
	case types.KindBoolean:
		return types.NewBoolean(), nil
	case types.KindNumber:
		if s.isInt {
			return types.NewNumber(types.AsInt()), nil
		}
		return types.NewNumber(types.AsFloat()), nil
	case types.KindList:
		elem, err := c.typeNode(s.elem)
		if err != nil {
			return nil, err
		}
		return types.NewList(elem)
	case types.KindObject:
		return c.object(s)
	default:
		return nil, fmt.Errorf("unsupported kind %s", s.kind)
	}
}

// looksLikeID flags UUIDs, 24 character hex object ids, and string values
// stored under id-like keys ("id", "sample_id", "sampleId").
func looksLikeID(key, value string) bool {
	if _, err := uuid.Parse(value); err == nil {
		return true
	}
	if objectIDPattern.MatchString(value) {
		return true
	}
	return keyLooksLikeID(key)
}

func keyLooksLikeID(key string) bool {
	if !strings.HasSuffix(strings.ToLower(key), "id") {
		return false
	}
	l := len(key)
	if l <= 2 {
		return true
	}
	if key[l-3] == '-' || key[l-3] == '_' {
		return true
	}
	return key[l-2] == 'I' && !('A' <= key[l-3] && key[l-3] <= 'Z')
}
