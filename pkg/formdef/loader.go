package formdef

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-opforms/internal/telemetry"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/types"
)

// LoadFS walks fsys and parses every .json, .yaml and .yml file. Operators are
// returned in file walk order, then in declaration order within each file.
// Operator ids must be unique across all files.
func LoadFS(ctx context.Context, fsys fs.FS) (ops []operator.Operator, err error) {
	_, span := telemetry.Start(ctx, "formdef.LoadFS")
	defer func() {
		span.SetAttributes(attribute.Int("formdef.operators", len(ops)))
		telemetry.End(span, err)
	}()

	if fsys == nil {
		return nil, nil
	}

	sources := make(map[string]string)
	err = fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formdef: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, op := range parsed {
			if previous, exists := sources[op.Name]; exists {
				return fmt.Errorf("formdef: duplicate operator %q (file %s, first declared in %s)", op.Name, path, previous)
			}
			sources[op.Name] = path
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// LoadRegistry loads fsys and registers every operator in reg.
func LoadRegistry(ctx context.Context, fsys fs.FS, reg *operator.Registry) error {
	ops, err := LoadFS(ctx, fsys)
	if err != nil {
		return err
	}
	for _, op := range ops {
		if err := reg.Register(op); err != nil {
			return fmt.Errorf("formdef: %w", err)
		}
	}
	return nil
}

// Parse decodes a single definition document. source is only used in error
// messages.
func Parse(data []byte, source string) ([]operator.Operator, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("formdef: file %s is empty", source)
	}

	// JSON is a subset of YAML, so one decoder covers both formats.
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formdef: parse %s: %w", source, err)
	}
	if doc.Operators.Kind == 0 {
		return nil, fmt.Errorf("formdef: file %s declares no operators", source)
	}
	if doc.Operators.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("formdef: file %s: operators must be a mapping", source)
	}

	var ops []operator.Operator
	seen := make(map[string]struct{})
	err := eachPair(&doc.Operators, func(key string, value *yaml.Node) error {
		id := strings.TrimSpace(key)
		if id == "" {
			return fmt.Errorf("formdef: file %s defines an empty operator id", source)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("formdef: duplicate operator %q (file %s)", id, source)
		}
		seen[id] = struct{}{}

		op, err := decodeOperator(id, value)
		if err != nil {
			return fmt.Errorf("formdef: operator %q (file %s): %w", id, source, err)
		}
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// ParseObject decodes a bare ordered property mapping, the same shape used
// for an operator's inputs.
func ParseObject(data []byte) (*types.Object, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("formdef: parse object: %w", err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return decodeObject(node.Content[0])
	}
	return decodeObject(&node)
}

func decodeOperator(id string, node *yaml.Node) (operator.Operator, error) {
	var raw operatorFile
	if err := node.Decode(&raw); err != nil {
		return operator.Operator{}, err
	}

	inputs, err := decodeObject(&raw.Inputs)
	if err != nil {
		return operator.Operator{}, fmt.Errorf("inputs: %w", err)
	}
	outputs, err := decodeObject(&raw.Outputs)
	if err != nil {
		return operator.Operator{}, fmt.Errorf("outputs: %w", err)
	}

	op := operator.Operator{
		Name:        id,
		Label:       raw.Label,
		Description: raw.Description,
		Dynamic:     raw.Dynamic,
		Inputs:      inputs,
		Outputs:     outputs,
	}
	if len(raw.Triggers) > 0 {
		op.Triggers = make(map[string]*types.Trigger, len(raw.Triggers))
		for name, trigger := range raw.Triggers {
			target := strings.TrimSpace(trigger.Operator)
			if target == "" {
				return operator.Operator{}, fmt.Errorf("trigger %q: operator is required", name)
			}
			op.Triggers[name] = types.NewTrigger(target, trigger.Params)
		}
	}
	if err := op.Normalize(); err != nil {
		return operator.Operator{}, err
	}
	return op, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		if err := fn(node.Content[idx].Value, node.Content[idx+1]); err != nil {
			return err
		}
	}
	return nil
}
