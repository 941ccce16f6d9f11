package types

// DefaultErrorMessage is used when a property does not declare its own.
const DefaultErrorMessage = "Invalid"

// PropertyOptions enumerates every option a Property understands. Label and
// Description are applied to the property's view rather than stored on the
// property itself.
type PropertyOptions struct {
	Label        string
	Description  string
	View         View
	Default      any
	Required     bool
	Choices      []any
	ErrorMessage string
	// Invalid forces the validity flag. When nil the flag is derived from the
	// property's descendants.
	Invalid *bool
}

// PropertyOption mutates PropertyOptions.
type PropertyOption func(*PropertyOptions)

// NewPropertyOptions applies opts over the defaults.
func NewPropertyOptions(opts ...PropertyOption) PropertyOptions {
	options := PropertyOptions{ErrorMessage: DefaultErrorMessage}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.ErrorMessage == "" {
		options.ErrorMessage = DefaultErrorMessage
	}
	return options
}

// WithLabel overrides the label of the property's view.
func WithLabel(label string) PropertyOption {
	return func(o *PropertyOptions) {
		o.Label = label
	}
}

// WithDescription overrides the description of the property's view.
func WithDescription(description string) PropertyOption {
	return func(o *PropertyOptions) {
		o.Description = description
	}
}

// WithView uses view as the template for the property's view. The template
// is cloned, never shared.
func WithView(view View) PropertyOption {
	return func(o *PropertyOptions) {
		o.View = view
	}
}

// WithDefault sets the default value shown by the renderer.
func WithDefault(value any) PropertyOption {
	return func(o *PropertyOptions) {
		o.Default = value
	}
}

// Required marks the property as required.
func Required() PropertyOption {
	return func(o *PropertyOptions) {
		o.Required = true
	}
}

// WithChoices restricts accepted values independently of an Enum type.
func WithChoices(values ...any) PropertyOption {
	return func(o *PropertyOptions) {
		o.Choices = cloneValues(values)
	}
}

// WithErrorMessage sets the message displayed when the property is invalid.
func WithErrorMessage(message string) PropertyOption {
	return func(o *PropertyOptions) {
		o.ErrorMessage = message
	}
}

// WithInvalid forces the validity flag, overriding descendant inspection.
func WithInvalid(invalid bool) PropertyOption {
	return func(o *PropertyOptions) {
		o.Invalid = &invalid
	}
}
