package dsl

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	KindSimple   = "simple"
	KindCompound = "compound"
)

// FieldSchema describes one property of a simple entity.
type FieldSchema struct {
	Type     string `yaml:"type" json:"type"`
	Key      bool   `yaml:"key,omitempty" json:"key,omitempty"`
	Excluded bool   `yaml:"excluded,omitempty" json:"excluded,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Default  any    `yaml:"default" json:"default,omitempty"`
	// HasDefault is true when the default key is present, including an explicit null.
	HasDefault bool `yaml:"-" json:"-"`
}

func (f *FieldSchema) UnmarshalYAML(n *yaml.Node) error {
	type plain FieldSchema
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*f = FieldSchema(p)
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "default" {
				f.HasDefault = true
			}
		}
	}
	return nil
}

func (f FieldSchema) MarshalYAML() (any, error) {
	out := map[string]any{"type": f.Type}
	if f.Key {
		out["key"] = true
	}
	if f.Excluded {
		out["excluded"] = true
	}
	if f.Optional {
		out["optional"] = true
	}
	if f.HasDefault {
		out["default"] = f.Default
	}
	return out, nil
}

// Property is a named field schema.
type Property struct {
	Name   string
	Schema FieldSchema
}

// Properties is an ordered property mapping. A repeated name replaces the earlier schema and
// keeps its position.
type Properties []Property

func (p *Properties) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: properties must be a mapping", n.Line)
	}
	out := make(Properties, 0, len(n.Content)/2)
	pos := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		var fs FieldSchema
		if err := n.Content[i+1].Decode(&fs); err != nil {
			return errors.Wrapf(err, "property %q", name)
		}
		if j, ok := pos[name]; ok {
			out[j].Schema = fs
			continue
		}
		pos[name] = len(out)
		out = append(out, Property{Name: name, Schema: fs})
	}
	*p = out
	return nil
}

func (p Properties) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, prop := range p {
		var v yaml.Node
		if err := v.Encode(prop.Schema); err != nil {
			return nil, err
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: prop.Name},
			&v,
		)
	}
	return n, nil
}

func (p Properties) Get(name string) (FieldSchema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return FieldSchema{}, false
}

// EntitySchema is the template of a simple entity. Version is 0 when absent (flat documents).
type EntitySchema struct {
	Type       string     `yaml:"type,omitempty"`
	Version    int        `yaml:"version,omitempty"`
	Properties Properties `yaml:"properties"`
}

type FieldMappingSchema struct {
	Field       string `yaml:"field"`
	SourceField string `yaml:"source_field"`
}

type SourceSchema struct {
	Entity   string               `yaml:"entity"`
	Fields   []FieldMappingSchema `yaml:"fields"`
	Optional bool                 `yaml:"optional,omitempty"`
}

// CompoundSchema is the template of a compound entity.
type CompoundSchema struct {
	Type    string         `yaml:"type"`
	Sources []SourceSchema `yaml:"sources"`
}
