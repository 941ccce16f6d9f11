// Package html renders an operator's input form as an HTML preview using
// pongo2 templates, with labels sanitised by bluemonday and go-theme tokens
// exposed as CSS custom properties.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-opforms/internal/labels"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/types"
)

const (
	defaultFormTemplate = "form.tpl"
	defaultRowTemplate  = "row.tpl"
)

// Renderer produces an HTML form for an operator.
type Renderer struct {
	engine       *engine
	templates    fs.FS
	action       func(operator.Operator) string
	submit       string
	themes       *Themes
	themeName    string
	themeVariant string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithTemplates adds a template source searched before the built-ins, so
// form.tpl and row.tpl (or the partials a theme names) can be overridden.
func WithTemplates(templates fs.FS) Option {
	return func(r *Renderer) {
		r.templates = templates
	}
}

// WithAction overrides how the form action URL is derived.
func WithAction(fn func(operator.Operator) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.action = fn
		}
	}
}

// WithSubmitLabel sets the submit button text.
func WithSubmitLabel(label string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(label) != "" {
			r.submit = label
		}
	}
}

// WithTheme resolves name/variant from themes whenever the render options
// carry no theme configuration of their own.
func WithTheme(themes *Themes, name, variant string) Option {
	return func(r *Renderer) {
		r.themes = themes
		r.themeName = name
		r.themeVariant = variant
	}
}

// New constructs an HTML renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{
		action: func(op operator.Operator) string { return "/operators/" + op.Name },
		submit: "Execute",
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	r.engine = newEngine(r.templates, nil)
	return r
}

func (r *Renderer) Name() string        { return "html" }
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render builds the form view and executes the form template.
func (r *Renderer) Render(ctx context.Context, op operator.Operator, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := op.Normalize(); err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}

	cfg := options.Theme
	if cfg == nil && r.themes != nil {
		resolved, err := r.themes.Config(r.themeName, r.themeVariant)
		if err != nil {
			return nil, err
		}
		cfg = resolved
	}

	view := r.formView(op, options, cfg)
	return r.engine.render(view.FormTemplate, pongo2.Context{"form": view})
}

// FormView is the template context for one form.
type FormView struct {
	Name            string
	Title           string
	Description     string
	Action          string
	Submit          string
	NeedsResolution bool
	FormErrors      []string
	Hidden          []render.HiddenField
	Rows            []Row

	Theme        string
	Variant      string
	Style        string
	Stylesheet   string
	FormTemplate string
	RowTemplate  string
}

// Row is one rendered line: a control, a display-only view, or the start or
// end of a nested group.
type Row struct {
	Kind        string
	Path        string
	Name        string
	ID          string
	Label       string
	Description string
	Required    bool
	Value       string
	Checked     bool
	Options     []ChoiceOption
	Errors      []string
	Invalid     bool
	Min         string
	Max         string
	Step        string
	Space       int
}

// ChoiceOption is a select, radio or multiselect entry.
type ChoiceOption struct {
	Label    string
	Value    string
	Selected bool
}

func (r *Renderer) formView(op operator.Operator, options render.RenderOptions, cfg *theme.RendererConfig) FormView {
	title := op.Label
	if title == "" {
		title = labels.FromName(op.Name)
	}
	view := FormView{
		Name:            op.Name,
		Title:           title,
		Description:     op.Description,
		Action:          r.action(op),
		Submit:          r.submit,
		NeedsResolution: op.Inputs.Dynamic(),
		FormErrors:      render.MergeFormErrors(options.FormErrors),
		Hidden: render.MergeHiddenFields(append(
			[]render.HiddenField{render.Hidden(render.OperatorField, op.Name)},
			options.Hidden...)...),
		FormTemplate: defaultFormTemplate,
		RowTemplate:  defaultRowTemplate,
	}

	if cfg != nil {
		view.Theme = cfg.Theme
		view.Variant = cfg.Variant
		view.Style = cssVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			view.Stylesheet = cfg.AssetURL(AssetStylesheet)
		}
		if name := cfg.Partials[PartialForm]; name != "" {
			view.FormTemplate = name
		}
		if name := cfg.Partials[PartialRow]; name != "" {
			view.RowTemplate = name
		}
	}

	b := rowBuilder{values: options.Values, errors: options.Errors}
	b.object(op.Inputs, "")
	view.Rows = b.rows
	return view
}

type rowBuilder struct {
	values map[string]any
	errors map[string][]string
	rows   []Row
}

func (b *rowBuilder) object(obj *types.Object, prefix string) {
	for _, name := range obj.Names() {
		prop, _ := obj.Property(name)
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		b.property(name, path, prop)
	}
}

func (b *rowBuilder) property(name, path string, prop *types.Property) {
	row := Row{
		Path:     path,
		Name:     path,
		ID:       "opforms-" + strings.NewReplacer(".", "-", "[]", "").Replace(path),
		Label:    labels.FromName(name),
		Required: prop.Required(),
		Errors:   b.errors[path],
	}
	if view := prop.View(); view != nil {
		if view.Label() != "" {
			row.Label = view.Label()
		}
		row.Description = view.Description()
		if view.Caption() != "" {
			row.Description = strings.TrimSpace(row.Description + " " + view.Caption())
		}
		if space, ok := view.Space(); ok {
			row.Space = space
		}
		switch view.Kind() {
		case types.ViewKindNotice:
			row.Kind = "notice"
		case types.ViewKindHeader:
			row.Kind = "header"
		case types.ViewKindWarning:
			row.Kind = "warning"
		case types.ViewKindButton:
			row.Kind = "button"
		}
		if row.Kind != "" {
			b.rows = append(b.rows, row)
			return
		}
	}
	if len(row.Errors) == 0 && prop.Invalid() {
		if _, nested := prop.Type().(*types.Object); !nested {
			row.Errors = []string{prop.ErrorMessage()}
		}
	}
	row.Invalid = len(row.Errors) > 0 || prop.Invalid()

	current, hasCurrent := lookup(b.values, path)
	if !hasCurrent && prop.Default() != nil {
		current, hasCurrent = prop.Default(), true
	}

	switch typ := prop.Type().(type) {
	case *types.Object:
		b.group(row, typ, path)
		return
	case *types.List:
		if obj, ok := typ.Element().(*types.Object); ok {
			b.group(row, obj, path+"[]")
			return
		}
		if options := optionsFor(prop, typ.Element(), current); len(options) > 0 {
			row.Kind = "multiselect"
			row.Name = path + "[]"
			row.Options = options
			break
		}
		row.Kind = "textarea"
		if hasCurrent {
			row.Value = joinItems(current)
		}
	case *types.Boolean:
		row.Kind = "checkbox"
		row.Checked, _ = current.(bool)
	default:
		if options := optionsFor(prop, typ, current); len(options) > 0 {
			row.Kind = "select"
			if v, ok := prop.View().(*types.Choices); ok && v.Kind() == types.ViewKindRadioGroup {
				row.Kind = "radio"
			}
			row.Options = options
			break
		}
		row.Kind = "text"
		if number, ok := typ.(*types.Number); ok {
			row.Kind = "number"
			row.Step = "any"
			if number.IsInt() {
				row.Step = "1"
			}
			if min, ok := number.Min(); ok {
				row.Min = formatNumber(min)
			}
			if max, ok := number.Max(); ok {
				row.Max = formatNumber(max)
			}
		}
		if hasCurrent && current != nil {
			row.Value = fmt.Sprint(current)
		}
	}
	b.rows = append(b.rows, row)
}

func (b *rowBuilder) group(row Row, obj *types.Object, path string) {
	row.Kind = "group_start"
	row.Path = path
	b.rows = append(b.rows, row)
	b.object(obj, path)
	b.rows = append(b.rows, Row{Kind: "group_end", Path: path})
}

// optionsFor lists choices from a Choices view, the property's choices or an
// Enum type, in that order, marking the ones matching current.
func optionsFor(prop *types.Property, typ types.TypeNode, current any) []ChoiceOption {
	selected := make(map[string]struct{})
	switch items := current.(type) {
	case nil:
	case []any:
		for _, item := range items {
			selected[fmt.Sprint(item)] = struct{}{}
		}
	default:
		selected[fmt.Sprint(items)] = struct{}{}
	}

	var out []ChoiceOption
	add := func(label string, value any) {
		text := fmt.Sprint(value)
		if label == "" {
			label = text
		}
		_, isSelected := selected[text]
		out = append(out, ChoiceOption{Label: label, Value: text, Selected: isSelected})
	}

	if view, ok := prop.View().(*types.Choices); ok && len(view.Choices()) > 0 {
		for _, choice := range view.Choices() {
			add(choice.Label(), choice.Value())
		}
		return out
	}
	values := prop.Choices()
	if len(values) == 0 {
		if enum, ok := typ.(*types.Enum); ok {
			values = enum.Values()
		}
	}
	for _, value := range values {
		add("", value)
	}
	return out
}

func lookup(values map[string]any, path string) (any, bool) {
	var current any = values
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

func joinItems(value any) string {
	items, ok := value.([]any)
	if !ok {
		return fmt.Sprint(value)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprint(item))
	}
	return strings.Join(lines, "\n")
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

var _ render.Renderer = (*Renderer)(nil)
