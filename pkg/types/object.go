package types

import "strings"

// Object is an ordered mapping from property name to Property. A Property's
// type may itself be an Object, so forms nest to any depth.
//
// The zero value is an empty, ready to use Object.
type Object struct {
	names   []string
	props   map[string]*Property
	dynamic bool
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{props: make(map[string]*Property)}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) typeNode()  {}

// ChildProperties returns the properties in definition order.
func (o *Object) ChildProperties() []*Property {
	out := make([]*Property, 0, len(o.names))
	for _, name := range o.names {
		out = append(out, o.props[name])
	}
	return out
}

// Names returns the property names in definition order.
func (o *Object) Names() []string {
	return append([]string(nil), o.names...)
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.names) }

// MarkDynamic flags the object's shape as runtime dependent: the renderer
// must resolve it through a follow-up call instead of rendering it as is.
// The flag is never cleared.
func (o *Object) MarkDynamic() { o.dynamic = true }

// Dynamic reports whether MarkDynamic was called.
func (o *Object) Dynamic() bool { return o.dynamic }

// AddProperty stores property under name and returns it. Names must be
// unique within the object.
func (o *Object) AddProperty(name string, property *Property) (*Property, error) {
	if err := o.checkName(name); err != nil {
		return nil, err
	}
	if property == nil || property.typ == nil {
		return nil, definitionError(name, "property type is required")
	}
	if reaches(property.typ, o) {
		return nil, definitionError(name, "object cannot contain itself")
	}
	if o.props == nil {
		o.props = make(map[string]*Property)
	}
	o.props[name] = property
	o.names = append(o.names, name)
	return property, nil
}

// DefineProperty builds a Property of typ and stores it under name. The view
// is a clone of the WithView template, or a fresh View when none is given;
// WithLabel and WithDescription are applied to that view.
func (o *Object) DefineProperty(name string, typ TypeNode, opts ...PropertyOption) (*Property, error) {
	if err := o.checkName(name); err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, definitionError(name, "property type is required")
	}
	options := NewPropertyOptions(opts...)
	options.View = resolveView(options, true)
	property, err := newProperty(typ, options)
	if err != nil {
		return nil, err
	}
	return o.AddProperty(name, property)
}

// Str defines a String property.
func (o *Object) Str(name string, opts ...PropertyOption) (*Property, error) {
	return o.DefineProperty(name, NewString(), opts...)
}

// Bool defines a Boolean property.
func (o *Object) Bool(name string, opts ...PropertyOption) (*Property, error) {
	return o.DefineProperty(name, NewBoolean(), opts...)
}

// Int defines an integral Number property.
func (o *Object) Int(name string, opts ...PropertyOption) (*Property, error) {
	return o.DefineProperty(name, NewNumber(AsInt()), opts...)
}

// Float defines a floating point Number property.
func (o *Object) Float(name string, opts ...PropertyOption) (*Property, error) {
	return o.DefineProperty(name, NewNumber(AsFloat()), opts...)
}

// Enum defines an Enum property over values.
func (o *Object) Enum(name string, values []any, opts ...PropertyOption) (*Property, error) {
	enum, err := NewEnum(values...)
	if err != nil {
		return nil, atPath(name, err)
	}
	return o.DefineProperty(name, enum, opts...)
}

// List defines a List property of element.
func (o *Object) List(name string, element TypeNode, opts ...PropertyOption) (*Property, error) {
	return o.BoundedList(name, element, nil, opts...)
}

// BoundedList defines a List property of element configured by bounds, such
// as WithMinItems and WithMaxItems.
func (o *Object) BoundedList(name string, element TypeNode, bounds []ListOption, opts ...PropertyOption) (*Property, error) {
	list, err := NewList(element, bounds...)
	if err != nil {
		return nil, atPath(name, err)
	}
	return o.DefineProperty(name, list, opts...)
}

// SampleID defines a SampleID property.
func (o *Object) SampleID(name string, opts ...PropertyOption) (*Property, error) {
	return o.DefineProperty(name, NewSampleID(), opts...)
}

// Obj defines a nested Object property.
func (o *Object) Obj(name string, nested *Object, opts ...PropertyOption) (*Property, error) {
	if nested == nil {
		return nil, definitionError(name, "property type is required")
	}
	return o.DefineProperty(name, nested, opts...)
}

// Property returns the property stored under name.
func (o *Object) Property(name string) (*Property, bool) {
	p, ok := o.props[name]
	return p, ok
}

// Lookup resolves a dotted path ("params.threshold") through nested objects.
// An undefined segment is a definition error.
func (o *Object) Lookup(path string) (*Property, error) {
	if path == "" {
		return nil, definitionError("", "property path is required")
	}
	current := o
	segments := strings.Split(path, ".")
	for idx, segment := range segments {
		p, ok := current.Property(segment)
		if !ok {
			return nil, definitionError(path, "property %q is not defined", segment)
		}
		if idx == len(segments)-1 {
			return p, nil
		}
		nested, ok := p.typ.(*Object)
		if !ok {
			return nil, definitionError(path, "property %q is a %s, not an Object", segment, p.typ.Kind())
		}
		current = nested
	}
	return nil, definitionError(path, "property path is required")
}

// Descriptor serializes the object and, recursively, its properties.
func (o *Object) Descriptor() Descriptor {
	properties := make(PropertyMap, 0, len(o.names))
	for _, name := range o.names {
		properties = append(properties, NamedDescriptor{
			Name:       name,
			Descriptor: o.props[name].Descriptor(),
		})
	}
	return Descriptor{
		"name":            string(KindObject),
		"properties":      properties,
		"needsResolution": o.dynamic,
	}
}

func (o *Object) checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return definitionError(name, "property name is required")
	}
	if strings.Contains(name, ".") {
		return definitionError(name, "property name must not contain '.'")
	}
	if _, exists := o.props[name]; exists {
		return definitionError(name, "property is already defined")
	}
	return nil
}

// reaches reports whether target is typ or is nested anywhere inside it.
func reaches(typ TypeNode, target *Object) bool {
	switch node := typ.(type) {
	case *Object:
		if node == target {
			return true
		}
		for _, child := range node.ChildProperties() {
			if reaches(child.typ, target) {
				return true
			}
		}
	case *List:
		return reaches(node.element, target)
	}
	return false
}
