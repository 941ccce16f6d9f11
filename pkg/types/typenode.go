package types

// Kind identifies a TypeNode variant.
type Kind string

const (
	KindString   Kind = "String"
	KindBoolean  Kind = "Boolean"
	KindNumber   Kind = "Number"
	KindEnum     Kind = "Enum"
	KindList     Kind = "List"
	KindSampleID Kind = "SampleID"
	KindObject   Kind = "Object"
)

// TypeNode describes the shape of an accepted value. The set of variants is
// closed; use a type switch over *String, *Boolean, *Number, *Enum, *List,
// *SampleID and *Object.
type TypeNode interface {
	Kind() Kind
	// Descriptor serializes the node. The "name" entry is the wire
	// discriminator and may differ from Kind (SampleID reports "String").
	Descriptor() Descriptor
	// ChildProperties returns the properties nested directly under the node.
	// Only *Object has any.
	ChildProperties() []*Property

	typeNode()
}

// String accepts free text.
type String struct{}

// NewString returns a String node.
func NewString() *String { return &String{} }

func (*String) Kind() Kind                   { return KindString }
func (*String) ChildProperties() []*Property { return nil }
func (*String) typeNode()                    {}

func (*String) Descriptor() Descriptor {
	return Descriptor{"name": string(KindString)}
}

// Boolean accepts true or false.
type Boolean struct{}

// NewBoolean returns a Boolean node.
func NewBoolean() *Boolean { return &Boolean{} }

func (*Boolean) Kind() Kind                   { return KindBoolean }
func (*Boolean) ChildProperties() []*Property { return nil }
func (*Boolean) typeNode()                    {}

func (*Boolean) Descriptor() Descriptor {
	return Descriptor{"name": string(KindBoolean)}
}

// SampleID accepts the identifier of a dataset sample. It is rendered as a
// plain string input, so its descriptor reports "String".
type SampleID struct{}

// NewSampleID returns a SampleID node.
func NewSampleID() *SampleID { return &SampleID{} }

func (*SampleID) Kind() Kind                   { return KindSampleID }
func (*SampleID) ChildProperties() []*Property { return nil }
func (*SampleID) typeNode()                    {}

func (*SampleID) Descriptor() Descriptor {
	return Descriptor{"name": string(KindString)}
}

// NumberKind selects integer or floating point semantics for a Number.
type NumberKind int

const (
	NumberUnspecified NumberKind = iota
	NumberInt
	NumberFloat
)

// Number accepts a numeric value with optional inclusive bounds.
type Number struct {
	min  *float64
	max  *float64
	kind NumberKind
}

// NumberOption configures a Number.
type NumberOption func(*Number)

// WithMin sets the inclusive lower bound.
func WithMin(value float64) NumberOption {
	return func(n *Number) {
		n.min = &value
	}
}

// WithMax sets the inclusive upper bound.
func WithMax(value float64) NumberOption {
	return func(n *Number) {
		n.max = &value
	}
}

// AsInt marks the number as integral.
func AsInt() NumberOption {
	return func(n *Number) {
		n.kind = NumberInt
	}
}

// AsFloat marks the number as floating point.
func AsFloat() NumberOption {
	return func(n *Number) {
		n.kind = NumberFloat
	}
}

// NewNumber returns a Number configured by opts. When both AsInt and AsFloat
// are supplied the last one wins.
func NewNumber(opts ...NumberOption) *Number {
	n := &Number{}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

func (*Number) Kind() Kind                   { return KindNumber }
func (*Number) ChildProperties() []*Property { return nil }
func (*Number) typeNode()                    {}

// Min returns the lower bound, if any.
func (n *Number) Min() (float64, bool) {
	if n.min == nil {
		return 0, false
	}
	return *n.min, true
}

// Max returns the upper bound, if any.
func (n *Number) Max() (float64, bool) {
	if n.max == nil {
		return 0, false
	}
	return *n.max, true
}

// NumberKind reports the int/float flavour.
func (n *Number) NumberKind() NumberKind { return n.kind }

// IsInt reports integer semantics.
func (n *Number) IsInt() bool { return n.kind == NumberInt }

// IsFloat reports floating point semantics. The flag is not part of the
// descriptor; only "int" travels on the wire.
func (n *Number) IsFloat() bool { return n.kind == NumberFloat }

func (n *Number) Descriptor() Descriptor {
	return Descriptor{
		"name": string(KindNumber),
		"min":  optionalFloat(n.min),
		"max":  optionalFloat(n.max),
		"int":  n.kind == NumberInt,
	}
}

// Enum accepts one of a fixed, ordered set of scalar values.
type Enum struct {
	values []any
}

// NewEnum returns an Enum over values. At least one value is required.
func NewEnum(values ...any) (*Enum, error) {
	if len(values) == 0 {
		return nil, definitionError("", "enum requires at least one value")
	}
	return &Enum{values: cloneValues(values)}, nil
}

// MustEnum is NewEnum that panics on error, for package-level templates.
func MustEnum(values ...any) *Enum {
	enum, err := NewEnum(values...)
	if err != nil {
		panic(err)
	}
	return enum
}

func (*Enum) Kind() Kind                   { return KindEnum }
func (*Enum) ChildProperties() []*Property { return nil }
func (*Enum) typeNode()                    {}

// Values returns a copy of the allowed values in order.
func (e *Enum) Values() []any { return cloneValues(e.values) }

func (e *Enum) Descriptor() Descriptor {
	return Descriptor{
		"name":   string(KindEnum),
		"values": cloneValues(e.values),
	}
}

// List accepts a sequence of elements of a single type.
type List struct {
	element  TypeNode
	minItems *int
	maxItems *int
}

// ListOption configures a List.
type ListOption func(*List)

// WithMinItems sets the minimum number of elements.
func WithMinItems(count int) ListOption {
	return func(l *List) {
		l.minItems = &count
	}
}

// WithMaxItems sets the maximum number of elements.
func WithMaxItems(count int) ListOption {
	return func(l *List) {
		l.maxItems = &count
	}
}

// NewList returns a List of element.
func NewList(element TypeNode, opts ...ListOption) (*List, error) {
	if element == nil {
		return nil, definitionError("", "list requires an element type")
	}
	l := &List{element: element}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.minItems != nil && *l.minItems < 0 {
		return nil, definitionError("", "list min_items must not be negative")
	}
	if l.minItems != nil && l.maxItems != nil && *l.maxItems < *l.minItems {
		return nil, definitionError("", "list max_items %d is lower than min_items %d", *l.maxItems, *l.minItems)
	}
	return l, nil
}

// MustList is NewList that panics on error.
func MustList(element TypeNode, opts ...ListOption) *List {
	l, err := NewList(element, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

func (*List) Kind() Kind                   { return KindList }
func (*List) ChildProperties() []*Property { return nil }
func (*List) typeNode()                    {}

// Element returns the element type.
func (l *List) Element() TypeNode { return l.element }

// MinItems returns the minimum element count, if any.
func (l *List) MinItems() (int, bool) {
	if l.minItems == nil {
		return 0, false
	}
	return *l.minItems, true
}

// MaxItems returns the maximum element count, if any.
func (l *List) MaxItems() (int, bool) {
	if l.maxItems == nil {
		return 0, false
	}
	return *l.maxItems, true
}

func (l *List) Descriptor() Descriptor {
	if l.element == nil {
		panic("types: list has no element type")
	}
	return Descriptor{
		"name":         string(KindList),
		"element_type": l.element.Descriptor(),
		"min_items":    optionalInt(l.minItems),
		"max_items":    optionalInt(l.maxItems),
	}
}
