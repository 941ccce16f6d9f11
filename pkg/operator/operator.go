// Package operator describes operators (named, independently registered
// actions the UI can invoke) together with the input and output forms built
// with pkg/types, and keeps them in a registry that triggers resolve against.
package operator

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-opforms/pkg/types"
)

// Operator bundles an operator's identity with its forms.
type Operator struct {
	Name        string
	Label       string
	Description string
	// Dynamic operators resolve their input form per request; the flag is
	// mirrored onto Inputs by Normalize.
	Dynamic  bool
	Inputs   *types.Object
	Outputs  *types.Object
	Triggers map[string]*types.Trigger
}

var errNameMissing = errors.New("operator: name is required")

// Normalize trims the name, fills missing forms with empty objects and marks
// the inputs dynamic when the operator is.
func (op *Operator) Normalize() error {
	op.Name = strings.TrimSpace(op.Name)
	if op.Name == "" {
		return errNameMissing
	}
	if op.Inputs == nil {
		op.Inputs = types.NewObject()
	}
	if op.Outputs == nil {
		op.Outputs = types.NewObject()
	}
	if op.Dynamic {
		op.Inputs.MarkDynamic()
	}
	return nil
}

// TriggerNames returns the trigger keys sorted.
func (op Operator) TriggerNames() []string {
	names := make([]string, 0, len(op.Triggers))
	for name := range op.Triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor serializes the operator config consumed by the renderer.
func (op Operator) Descriptor() types.Descriptor {
	d := types.Descriptor{
		"name":        op.Name,
		"label":       emptyToNil(op.Label),
		"description": emptyToNil(op.Description),
		"dynamic":     op.Dynamic,
		"inputs":      objectDescriptor(op.Inputs),
		"outputs":     objectDescriptor(op.Outputs),
	}
	triggers := make(types.PropertyMap, 0, len(op.Triggers))
	for _, name := range op.TriggerNames() {
		triggers = append(triggers, types.NamedDescriptor{
			Name:       name,
			Descriptor: op.Triggers[name].Descriptor(),
		})
	}
	d["triggers"] = triggers
	return d
}

func objectDescriptor(obj *types.Object) any {
	if obj == nil {
		return nil
	}
	return obj.Descriptor()
}

func emptyToNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}
