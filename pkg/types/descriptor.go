package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Descriptor is the serialized form of a node. Values are JSON-compatible:
// nil, bool, numbers, strings, []any, []Descriptor, Descriptor and PropertyMap.
type Descriptor map[string]any

// Name returns the discriminator stored under "name".
func (d Descriptor) Name() string {
	name, _ := d["name"].(string)
	return name
}

// NamedDescriptor pairs a property name with the property's descriptor.
type NamedDescriptor struct {
	Name       string
	Descriptor Descriptor
}

// PropertyMap is the insertion-ordered name to descriptor mapping emitted for
// Object.properties. It encodes as a JSON object / YAML mapping whose keys keep
// the order in which the properties were defined.
type PropertyMap []NamedDescriptor

// Get returns the descriptor registered under name.
func (m PropertyMap) Get(name string) (Descriptor, bool) {
	for _, entry := range m {
		if entry.Name == name {
			return entry.Descriptor, true
		}
	}
	return nil, false
}

// Names lists the property names in order.
func (m PropertyMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, entry := range m {
		names = append(names, entry.Name)
	}
	return names
}

// MarshalJSON writes the entries as an object, preserving order.
func (m PropertyMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, entry := range m {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("types: encode property %q: %w", entry.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML builds a mapping node so yaml.v3 keeps the definition order.
func (m PropertyMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range m {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Name}
		value := &yaml.Node{}
		if err := value.Encode(entry.Descriptor); err != nil {
			return nil, fmt.Errorf("types: encode property %q: %w", entry.Name, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

func optionalFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func optionalInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func optionalString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func copyInt(value *int) *int {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneValues(values []any) []any {
	if values == nil {
		return nil
	}
	return append([]any(nil), values...)
}
