// Package jsondesc renders an operator as the descriptor document a frontend
// consumes to draw its forms.
package jsondesc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/types"
	"github.com/goliatone/go-opforms/pkg/validation"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Renderer serializes operator descriptors.
type Renderer struct {
	format Format
	indent string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithFormat selects JSON (default) or YAML output.
func WithFormat(format Format) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithIndent pretty prints JSON output with indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs a descriptor renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{format: FormatJSON}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	if r.format == FormatYAML {
		return "yaml"
	}
	return "json"
}

func (r *Renderer) ContentType() string {
	if r.format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Render encodes the operator descriptor. Field errors in options are
// projected onto the inputs first, so the matching properties are emitted
// with invalid and error_message set.
func (r *Renderer) Render(ctx context.Context, op operator.Operator, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := op.Normalize(); err != nil {
		return nil, fmt.Errorf("jsondesc: %w", err)
	}
	if len(options.Errors) > 0 {
		annotated, err := validation.Annotate(op.Inputs, issuesFrom(options.Errors))
		if err != nil {
			return nil, fmt.Errorf("jsondesc: %w", err)
		}
		op.Inputs = annotated
	}
	return r.encode(op.Descriptor())
}

func (r *Renderer) encode(descriptor types.Descriptor) ([]byte, error) {
	if r.format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(descriptor); err != nil {
			return nil, fmt.Errorf("jsondesc: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("jsondesc: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	if r.indent != "" {
		return json.MarshalIndent(descriptor, "", r.indent)
	}
	return json.Marshal(descriptor)
}

func issuesFrom(errs map[string][]string) validation.Result {
	paths := make([]string, 0, len(errs))
	for path := range errs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := validation.Result{Valid: true}
	for _, path := range paths {
		for _, message := range errs[path] {
			result.Valid = false
			result.Issues = append(result.Issues, validation.Issue{Path: path, Message: message})
		}
	}
	return result
}
