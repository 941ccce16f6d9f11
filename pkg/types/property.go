package types

// Property binds a TypeNode to validation metadata and an optional view.
type Property struct {
	typ          TypeNode
	view         View
	defaultValue any
	required     bool
	choices      []any
	errorMessage string
	invalid      *bool
}

// NewProperty builds a standalone Property. A view template passed through
// WithView is cloned; Label and Description overrides are applied to it. When
// no view is given and no override is requested the property has no view.
func NewProperty(typ TypeNode, opts ...PropertyOption) (*Property, error) {
	options := NewPropertyOptions(opts...)
	options.View = resolveView(options, false)
	return newProperty(typ, options)
}

func newProperty(typ TypeNode, options PropertyOptions) (*Property, error) {
	if typ == nil {
		return nil, definitionError("", "property type is required")
	}
	p := &Property{
		typ:          typ,
		view:         options.View,
		defaultValue: options.Default,
		required:     options.Required,
		choices:      cloneValues(options.Choices),
		errorMessage: options.ErrorMessage,
	}
	if p.errorMessage == "" {
		p.errorMessage = DefaultErrorMessage
	}
	if options.Invalid != nil {
		invalid := *options.Invalid
		p.invalid = &invalid
	}
	return p, nil
}

func resolveView(options PropertyOptions, always bool) View {
	var view View
	switch {
	case options.View != nil:
		view = options.View.Clone()
	case always || options.Label != "" || options.Description != "":
		view = NewView(ViewConfig{})
	default:
		return nil
	}
	view.override(options.Label, options.Description)
	return view
}

// Type returns the property's type node.
func (p *Property) Type() TypeNode { return p.typ }

// View returns the attached view, or nil.
func (p *Property) View() View { return p.view }

// Default returns the default value, or nil.
func (p *Property) Default() any { return p.defaultValue }

// Required reports whether a value must be supplied.
func (p *Property) Required() bool { return p.required }

// Choices returns the legacy choice restriction, or nil.
func (p *Property) Choices() []any { return cloneValues(p.choices) }

// ErrorMessage returns the message shown when the property is invalid.
func (p *Property) ErrorMessage() string { return p.errorMessage }

// Invalid reports the validity flag. An explicit WithInvalid always wins;
// otherwise the property is invalid when any nested property is. The result
// is computed on each call so it tracks properties added after construction.
func (p *Property) Invalid() bool {
	if p.invalid != nil {
		return *p.invalid
	}
	return p.HasInvalidDescendants()
}

// InvalidOverride returns the explicit validity flag, if one was set.
func (p *Property) InvalidOverride() (bool, bool) {
	if p.invalid == nil {
		return false, false
	}
	return *p.invalid, true
}

// HasInvalidDescendants reports whether any property nested under this one's
// type, at any depth, is invalid. It stops at the first hit.
func (p *Property) HasInvalidDescendants() bool {
	if p.typ == nil {
		return false
	}
	for _, child := range p.typ.ChildProperties() {
		// Without an override Invalid is HasInvalidDescendants, so each
		// child is walked once.
		if (child.invalid != nil && *child.invalid) || child.HasInvalidDescendants() {
			return true
		}
	}
	return false
}

// Descriptor serializes the property. Invalid properties additionally carry
// "invalid" and "error_message" so the renderer can show inline feedback.
func (p *Property) Descriptor() Descriptor {
	if p == nil || p.typ == nil {
		panic("types: property has no type")
	}
	var view any
	if p.view != nil {
		view = p.view.Descriptor()
	}
	var choices any
	if p.choices != nil {
		choices = cloneValues(p.choices)
	}
	d := Descriptor{
		"type":     p.typ.Descriptor(),
		"default":  p.defaultValue,
		"required": p.required,
		"choices":  choices,
		"view":     view,
	}
	if p.Invalid() {
		d["invalid"] = true
		d["error_message"] = p.errorMessage
	}
	return d
}
