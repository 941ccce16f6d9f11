package types

// ViewKind identifies a View variant.
type ViewKind string

const (
	ViewKindView       ViewKind = "View"
	ViewKindChoice     ViewKind = "Choice"
	ViewKindChoices    ViewKind = "Choices"
	ViewKindRadioGroup ViewKind = "RadioGroup"
	ViewKindDropdown   ViewKind = "Dropdown"
	ViewKindNotice     ViewKind = "Notice"
	ViewKindHeader     ViewKind = "Header"
	ViewKindWarning    ViewKind = "Warning"
	ViewKindButton     ViewKind = "Button"
)

// ViewConfig is the construction record shared by every view. Empty strings
// and a nil Space are serialized as null.
type ViewConfig struct {
	Label       string
	Description string
	Caption     string
	Space       *int
}

func (c ViewConfig) clone() ViewConfig {
	c.Space = copyInt(c.Space)
	return c
}

// View is a presentation hint attached to a property. The set of variants is
// closed: *BasicView, *Choice and *Choices.
type View interface {
	Kind() ViewKind
	Label() string
	Description() string
	Caption() string
	Space() (int, bool)
	// Config returns the snapshot the view was constructed from.
	Config() ViewConfig
	// Clone returns an independent copy; no mutable state is shared with the
	// receiver.
	Clone() View
	Descriptor() Descriptor

	override(label, description string)
}

type viewBase struct {
	kind        ViewKind
	config      ViewConfig
	label       string
	description string
	caption     string
	space       *int
}

func newViewBase(kind ViewKind, cfg ViewConfig) viewBase {
	cfg = cfg.clone()
	return viewBase{
		kind:        kind,
		config:      cfg,
		label:       cfg.Label,
		description: cfg.Description,
		caption:     cfg.Caption,
		space:       copyInt(cfg.Space),
	}
}

func (v *viewBase) Kind() ViewKind      { return v.kind }
func (v *viewBase) Label() string       { return v.label }
func (v *viewBase) Description() string { return v.description }
func (v *viewBase) Caption() string     { return v.caption }
func (v *viewBase) Config() ViewConfig  { return v.config.clone() }

func (v *viewBase) Space() (int, bool) {
	if v.space == nil {
		return 0, false
	}
	return *v.space, true
}

func (v *viewBase) override(label, description string) {
	if label != "" {
		v.label = label
	}
	if description != "" {
		v.description = description
	}
}

func (v *viewBase) copy() viewBase {
	out := *v
	out.config = v.config.clone()
	out.space = copyInt(v.space)
	return out
}

func (v *viewBase) descriptor() Descriptor {
	return Descriptor{
		"name":        string(v.kind),
		"label":       optionalString(v.label),
		"description": optionalString(v.description),
		"caption":     optionalString(v.caption),
		"space":       optionalInt(v.space),
	}
}

// BasicView carries only the shared fields. It backs the View, Notice,
// Header, Warning and Button kinds.
type BasicView struct {
	viewBase
}

// NewView returns a plain View.
func NewView(cfg ViewConfig) *BasicView { return newBasicView(ViewKindView, cfg) }

// NewNotice returns a Notice view.
func NewNotice(cfg ViewConfig) *BasicView { return newBasicView(ViewKindNotice, cfg) }

// NewHeader returns a Header view.
func NewHeader(cfg ViewConfig) *BasicView { return newBasicView(ViewKindHeader, cfg) }

// NewWarning returns a Warning view.
func NewWarning(cfg ViewConfig) *BasicView { return newBasicView(ViewKindWarning, cfg) }

// NewButton returns a Button view.
func NewButton(cfg ViewConfig) *BasicView { return newBasicView(ViewKindButton, cfg) }

func newBasicView(kind ViewKind, cfg ViewConfig) *BasicView {
	return &BasicView{viewBase: newViewBase(kind, cfg)}
}

func (v *BasicView) Clone() View {
	return &BasicView{viewBase: v.copy()}
}

func (v *BasicView) Descriptor() Descriptor {
	return v.descriptor()
}

// Choice is a single selectable option.
type Choice struct {
	viewBase
	value any
}

// NewChoice returns a Choice for value.
func NewChoice(value any, cfg ViewConfig) *Choice {
	return &Choice{viewBase: newViewBase(ViewKindChoice, cfg), value: value}
}

// Value returns the raw value submitted when the choice is selected.
func (c *Choice) Value() any { return c.value }

func (c *Choice) Clone() View { return c.cloneChoice() }

func (c *Choice) cloneChoice() *Choice {
	return &Choice{viewBase: c.copy(), value: c.value}
}

func (c *Choice) Descriptor() Descriptor {
	d := c.descriptor()
	d["value"] = c.value
	return d
}

// Choices presents an ordered list of Choice options. It backs the Choices,
// RadioGroup and Dropdown kinds.
type Choices struct {
	viewBase
	choices []*Choice
}

// NewChoices returns a Choices view seeded with copies of choices.
func NewChoices(cfg ViewConfig, choices ...*Choice) *Choices {
	return newChoices(ViewKindChoices, cfg, choices)
}

// NewRadioGroup returns a RadioGroup view seeded with copies of choices.
func NewRadioGroup(cfg ViewConfig, choices ...*Choice) *Choices {
	return newChoices(ViewKindRadioGroup, cfg, choices)
}

// NewDropdown returns a Dropdown view seeded with copies of choices.
func NewDropdown(cfg ViewConfig, choices ...*Choice) *Choices {
	return newChoices(ViewKindDropdown, cfg, choices)
}

func newChoices(kind ViewKind, cfg ViewConfig, choices []*Choice) *Choices {
	return &Choices{
		viewBase: newViewBase(kind, cfg),
		choices:  cloneChoiceList(choices),
	}
}

// AddChoice appends a new Choice and returns it.
func (c *Choices) AddChoice(value any, cfg ViewConfig) *Choice {
	choice := NewChoice(value, cfg)
	c.choices = append(c.choices, choice)
	return choice
}

// Choices returns the options in insertion order. The slice is a copy; the
// elements are the live Choice nodes.
func (c *Choices) Choices() []*Choice {
	return append([]*Choice(nil), c.choices...)
}

// Values projects the options to their raw values, order preserved.
func (c *Choices) Values() []any {
	values := make([]any, 0, len(c.choices))
	for _, choice := range c.choices {
		values = append(values, choice.value)
	}
	return values
}

func (c *Choices) Clone() View {
	return &Choices{
		viewBase: c.copy(),
		choices:  cloneChoiceList(c.choices),
	}
}

// Descriptor always reports "Choices" as the name, including for RadioGroup
// and Dropdown, which the renderer does not distinguish on the wire.
func (c *Choices) Descriptor() Descriptor {
	d := c.descriptor()
	d["name"] = string(ViewKindChoices)
	choices := make([]Descriptor, 0, len(c.choices))
	for _, choice := range c.choices {
		choices = append(choices, choice.Descriptor())
	}
	d["choices"] = choices
	return d
}

func cloneChoiceList(choices []*Choice) []*Choice {
	out := make([]*Choice, 0, len(choices))
	for _, choice := range choices {
		if choice == nil {
			continue
		}
		out = append(out, choice.cloneChoice())
	}
	return out
}
