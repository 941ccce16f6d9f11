// Package opforms declares operator input and output forms, serializes them
// to the descriptor format a frontend renders, and checks submitted values
// against them.
package opforms

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-opforms/pkg/formdef"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/renderers/html"
	"github.com/goliatone/go-opforms/pkg/renderers/jsondesc"
	"github.com/goliatone/go-opforms/pkg/types"
	"github.com/goliatone/go-opforms/pkg/validation"
)

// Operator aliases operator.Operator for callers that only import the root
// package.
type Operator = operator.Operator

// Object aliases types.Object, the ordered property container forms are
// built from.
type Object = types.Object

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// NewObject returns an empty form object.
func NewObject() *Object {
	return types.NewObject()
}

// NewRegistry returns an empty operator registry.
func NewRegistry() *operator.Registry {
	return operator.NewRegistry()
}

// LoadDefinitions reads every definition file in fsys into a new registry
// and checks that all triggers name a registered operator.
func LoadDefinitions(ctx context.Context, fsys fs.FS) (*operator.Registry, error) {
	reg := operator.NewRegistry()
	if err := formdef.LoadRegistry(ctx, fsys, reg); err != nil {
		return nil, err
	}
	if err := reg.CheckTriggers(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Describe returns the JSON descriptor for op.
func Describe(ctx context.Context, op Operator) ([]byte, error) {
	return jsondesc.New().Render(ctx, op, RenderOptions{})
}

// Validate checks values against the operator's inputs.
func Validate(ctx context.Context, op Operator, values map[string]any) validation.Result {
	if err := op.Normalize(); err != nil {
		return validation.Result{Issues: []validation.Issue{{Message: err.Error()}}}
	}
	return validation.Validate(ctx, op.Inputs, values)
}

// DefaultRenderers returns a registry holding the non-interactive renderers:
// "json", "yaml" and "html".
func DefaultRenderers(options ...html.Option) *render.Registry {
	reg := render.NewRegistry()
	reg.MustRegister(jsondesc.New())
	reg.MustRegister(jsondesc.New(jsondesc.WithFormat(jsondesc.FormatYAML)))
	reg.MustRegister(html.New(options...))
	return reg
}

// Render looks up rendererName in renderers and renders op with it.
func Render(ctx context.Context, renderers *render.Registry, rendererName string, op Operator, options RenderOptions) ([]byte, error) {
	renderer, err := renderers.Get(rendererName)
	if err != nil {
		return nil, err
	}
	out, err := renderer.Render(ctx, op, options)
	if err != nil {
		return nil, fmt.Errorf("opforms: render %s with %s: %w", op.Name, rendererName, err)
	}
	return out, nil
}

// RenderAccept renders op with the renderer that best matches an HTTP Accept
// header and returns the output with its content type.
func RenderAccept(ctx context.Context, renderers *render.Registry, accept string, op Operator, options RenderOptions) ([]byte, string, error) {
	renderer, err := renderers.Negotiate(accept)
	if err != nil {
		return nil, "", err
	}
	out, err := renderer.Render(ctx, op, options)
	if err != nil {
		return nil, "", fmt.Errorf("opforms: render %s with %s: %w", op.Name, renderer.Name(), err)
	}
	return out, renderer.ContentType(), nil
}
