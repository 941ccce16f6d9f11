package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goliatone/go-opforms/internal/labels"
	"github.com/goliatone/go-opforms/internal/telemetry"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/types"
	"github.com/goliatone/go-opforms/pkg/validation"
)

// Renderer implements render.Renderer for terminal sessions: it prompts for
// every input property of an operator and serializes the collected values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	prefixes          Prefixes
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		prefixes:     DefaultPrefixes,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for the operator's inputs and returns the collected values.
// The values are validated before serialization.
func (r *Renderer) Render(ctx context.Context, op operator.Operator, opts render.RenderOptions) (out []byte, err error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	ctx, span := telemetry.Start(ctx, "tui.Render", attribute.String("operator", op.Name))
	defer func() { telemetry.End(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := op.Normalize(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if op.Inputs.Dynamic() {
		return nil, fmt.Errorf("%w: %s", ErrNeedsResolution, op.Name)
	}

	if err := r.header(ctx, op); err != nil {
		return nil, err
	}
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.prefixes.Error+message); err != nil {
			return nil, err
		}
	}

	state := NewState(opts.Values, opts.Errors)
	if err := r.promptObject(ctx, op.Inputs, "", state); err != nil {
		return nil, err
	}

	values := state.Values()
	result := validation.Validate(ctx, op.Inputs, values)
	if !result.Valid {
		for _, issue := range result.Issues {
			_ = r.driver.Info(ctx, r.prefixes.Error+issue.Message)
		}
		return nil, fmt.Errorf("%w: %d issue(s)", ErrInvalidSubmission, len(result.Issues))
	}

	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) header(ctx context.Context, op operator.Operator) error {
	title := op.Label
	if title == "" {
		title = op.Name
	}
	if err := r.driver.Info(ctx, r.prefixes.Info+title); err != nil {
		return err
	}
	if op.Description != "" {
		return r.driver.Info(ctx, r.prefixes.Info+op.Description)
	}
	return nil
}

func (r *Renderer) promptObject(ctx context.Context, obj *types.Object, prefix string, state *State) error {
	for _, name := range obj.Names() {
		prop, _ := obj.Property(name)
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if err := r.promptProperty(ctx, name, path, prop, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptProperty(ctx context.Context, name, path string, prop *types.Property, state *State) error {
	view := prop.View()
	label := labels.FromName(name)
	help := ""
	if view != nil {
		if view.Label() != "" {
			label = view.Label()
		}
		help = strings.TrimSpace(view.Description() + " " + view.Caption())

		switch view.Kind() {
		case types.ViewKindNotice, types.ViewKindHeader:
			return r.driver.Info(ctx, r.prefixes.Info+joinText(label, view.Description()))
		case types.ViewKindWarning:
			return r.driver.Info(ctx, r.prefixes.Warning+joinText(label, view.Description()))
		case types.ViewKindButton:
			return nil
		}
	}

	messages := state.ErrorsFor(path)
	if invalid, set := prop.InvalidOverride(); len(messages) == 0 && set && invalid {
		messages = []string{prop.ErrorMessage()}
	}
	for _, message := range messages {
		if err := r.driver.Info(ctx, r.prefixes.Error+message); err != nil {
			return err
		}
	}

	f := field{path: path, label: label, help: help, prop: prop}
	f.current, f.hasCurrent = state.Current(path)
	if !f.hasCurrent && prop.Default() != nil {
		f.current, f.hasCurrent = prop.Default(), true
	}

	switch typ := prop.Type().(type) {
	case *types.Object:
		if err := r.driver.Info(ctx, r.prefixes.Info+label); err != nil {
			return err
		}
		return r.promptObject(ctx, typ, path, state)
	case *types.List:
		value, set, err := r.promptList(ctx, f, typ, state)
		if err != nil || !set {
			return err
		}
		state.SetValue(path, value)
		return nil
	default:
		value, set, err := r.promptScalar(ctx, f, typ)
		if err != nil || !set {
			return err
		}
		state.SetValue(path, value)
		return nil
	}
}

type field struct {
	path       string
	label      string
	help       string
	prop       *types.Property
	current    any
	hasCurrent bool
}

// promptScalar returns the value to store and whether one was given at all.
func (r *Renderer) promptScalar(ctx context.Context, f field, typ types.TypeNode) (any, bool, error) {
	if options := choiceOptions(f.prop, typ); len(options) > 0 {
		return r.promptSelect(ctx, f, options)
	}

	switch node := typ.(type) {
	case *types.Boolean:
		def, _ := f.current.(bool)
		value, err := r.driver.Confirm(ctx, ConfirmConfig{Message: f.label, Default: def, Help: f.help})
		return value, err == nil, err
	case *types.Number:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message:   f.label,
			Default:   currentString(f),
			Help:      f.help,
			Validator: numberValidator(f, node),
		})
		if err != nil || strings.TrimSpace(raw) == "" {
			return nil, false, err
		}
		value, err := parseNumber(strings.TrimSpace(raw), node)
		return value, err == nil, err
	default:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message:   f.label,
			Default:   currentString(f),
			Help:      f.help,
			Validator: requiredValidator(f),
		})
		if err != nil || (raw == "" && !f.prop.Required()) {
			return nil, false, err
		}
		return raw, true, nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, f field, options []option) (any, bool, error) {
	names := optionLabels(options)
	defaultIndex := 0
	if f.hasCurrent {
		if idx := optionIndex(options, f.current); idx >= 0 {
			defaultIndex = idx
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      f.label,
		Options:      names,
		DefaultIndex: defaultIndex,
		Help:         f.help,
	})
	if err != nil {
		return nil, false, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, false, fmt.Errorf("tui: %s: selection %d out of range", f.path, idx)
	}
	return options[idx].value, true, nil
}

func (r *Renderer) promptList(ctx context.Context, f field, list *types.List, state *State) (any, bool, error) {
	element := list.Element()

	if options := choiceOptions(f.prop, element); len(options) > 0 {
		var defaults []int
		for _, item := range toItems(f.current) {
			if idx := optionIndex(options, item); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  f.label,
			Options:  optionLabels(options),
			Defaults: defaults,
			Help:     f.help,
		})
		if err != nil {
			return nil, false, err
		}
		values := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				values = append(values, options[idx].value)
			}
		}
		return values, true, nil
	}

	if obj, ok := element.(*types.Object); ok {
		return r.promptObjectItems(ctx, f, obj, state)
	}

	var lines []string
	for _, item := range toItems(f.current) {
		lines = append(lines, fmt.Sprint(item))
	}
	raw, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: f.label + " (one per line)",
		Default: strings.Join(lines, "\n"),
		Help:    f.help,
	})
	if err != nil {
		return nil, false, err
	}
	values := make([]any, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, err := parseElement(line, element)
		if err != nil {
			return nil, false, fmt.Errorf("tui: %s: %w", f.path, err)
		}
		values = append(values, value)
	}
	if len(values) == 0 && !f.prop.Required() {
		return nil, false, nil
	}
	return values, true, nil
}

func (r *Renderer) promptObjectItems(ctx context.Context, f field, obj *types.Object, state *State) (any, bool, error) {
	prefilled := toItems(f.current)
	items := make([]any, 0, len(prefilled))
	for idx := 0; ; idx++ {
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s item #%d?", f.label, idx+1),
			Default: idx < len(prefilled),
		})
		if err != nil {
			return nil, false, err
		}
		if !more {
			break
		}
		var seed map[string]any
		if idx < len(prefilled) {
			seed, _ = prefilled[idx].(map[string]any)
		}
		child := state.Scoped(f.path, seed)
		if err := r.promptObject(ctx, obj, "", child); err != nil {
			return nil, false, err
		}
		items = append(items, child.Values())
	}
	if len(items) == 0 && !f.prop.Required() {
		return nil, false, nil
	}
	return items, true, nil
}

type option struct {
	label string
	value any
}

// choiceOptions lists the selectable values for a property, preferring a
// Choices view (for its labels), then the property's choices, then the
// values of an Enum type.
func choiceOptions(prop *types.Property, typ types.TypeNode) []option {
	if view, ok := prop.View().(*types.Choices); ok && len(view.Choices()) > 0 {
		out := make([]option, 0, len(view.Choices()))
		for _, choice := range view.Choices() {
			label := choice.Label()
			if label == "" {
				label = fmt.Sprint(choice.Value())
			}
			out = append(out, option{label: label, value: choice.Value()})
		}
		return out
	}
	values := prop.Choices()
	if len(values) == 0 {
		if enum, ok := typ.(*types.Enum); ok {
			values = enum.Values()
		}
	}
	out := make([]option, 0, len(values))
	for _, value := range values {
		out = append(out, option{label: fmt.Sprint(value), value: value})
	}
	return out
}

func optionLabels(options []option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.label
	}
	return out
}

func optionIndex(options []option, value any) int {
	for i, opt := range options {
		if fmt.Sprint(opt.value) == fmt.Sprint(value) {
			return i
		}
	}
	return -1
}

func numberValidator(f field, typ *types.Number) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if f.prop.Required() {
				return fmt.Errorf("%s is required", f.label)
			}
			return nil
		}
		value, err := parseNumber(raw, typ)
		if err != nil {
			return err
		}
		number, _ := strconv.ParseFloat(fmt.Sprint(value), 64)
		if min, ok := typ.Min(); ok && number < min {
			return fmt.Errorf("must be >= %v", min)
		}
		if max, ok := typ.Max(); ok && number > max {
			return fmt.Errorf("must be <= %v", max)
		}
		return nil
	}
}

func requiredValidator(f field) func(string) error {
	if !f.prop.Required() {
		return nil
	}
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("%s is required", f.label)
		}
		return nil
	}
}

func parseNumber(raw string, typ *types.Number) (any, error) {
	if typ.IsInt() {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return value, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return value, nil
}

func parseElement(raw string, element types.TypeNode) (any, error) {
	switch node := element.(type) {
	case *types.Number:
		return parseNumber(raw, node)
	case *types.Boolean:
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return value, nil
	default:
		return raw, nil
	}
}

func currentString(f field) string {
	if !f.hasCurrent || f.current == nil {
		return ""
	}
	return fmt.Sprint(f.current)
}

func toItems(value any) []any {
	switch items := value.(type) {
	case []any:
		return items
	case []string:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

func joinText(parts ...string) string {
	var out []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ": ")
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for idx, val := range v {
			if _, nested := val.(map[string]any); nested {
				flatten(fmt.Sprintf("%s[%d]", prefix, idx), val, out)
				continue
			}
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}

var _ render.Renderer = (*Renderer)(nil)
