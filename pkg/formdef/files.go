package formdef

import "gopkg.in/yaml.v3"

type documentFile struct {
	Operators yaml.Node `yaml:"operators"`
}

type operatorFile struct {
	Label       string                 `yaml:"label"`
	Description string                 `yaml:"description"`
	Dynamic     bool                   `yaml:"dynamic"`
	Inputs      yaml.Node              `yaml:"inputs"`
	Outputs     yaml.Node              `yaml:"outputs"`
	Triggers    map[string]triggerFile `yaml:"triggers"`
}

type triggerFile struct {
	Operator string         `yaml:"operator"`
	Params   map[string]any `yaml:"params"`
}

type propertyFile struct {
	Type         string     `yaml:"type"`
	Label        string     `yaml:"label"`
	Description  string     `yaml:"description"`
	Required     bool       `yaml:"required"`
	Default      any        `yaml:"default"`
	Choices      []any      `yaml:"choices"`
	ErrorMessage string     `yaml:"error_message"`
	Invalid      *bool      `yaml:"invalid"`
	View         *viewFile  `yaml:"view"`
	Values       []any      `yaml:"values"`
	Min          *float64   `yaml:"min"`
	Max          *float64   `yaml:"max"`
	Element      *yaml.Node `yaml:"element"`
	MinItems     *int       `yaml:"min_items"`
	MaxItems     *int       `yaml:"max_items"`
	Properties   yaml.Node  `yaml:"properties"`
	Dynamic      bool       `yaml:"dynamic"`
}

type viewFile struct {
	Kind        string       `yaml:"kind"`
	Label       string       `yaml:"label"`
	Description string       `yaml:"description"`
	Caption     string       `yaml:"caption"`
	Space       *int         `yaml:"space"`
	Choices     []choiceFile `yaml:"choices"`
}

type choiceFile struct {
	Value       any    `yaml:"value"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Caption     string `yaml:"caption"`
	Space       *int   `yaml:"space"`
}
