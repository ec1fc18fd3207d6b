package entity

// Meta is the serializable description of a produced type.
type Meta struct {
	Name     string       `json:"name" yaml:"name"`
	Kind     Kind         `json:"kind" yaml:"kind"`
	ID       string       `json:"id" yaml:"id"`
	Version  int          `json:"version,omitempty" yaml:"version,omitempty"`
	Keys     []string     `json:"keys,omitempty" yaml:"keys,omitempty"`
	Excluded []string     `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Fields   []MetaField  `json:"fields" yaml:"fields"`
	Sources  []MetaSource `json:"sources,omitempty" yaml:"sources,omitempty"`
}

type MetaField struct {
	Name       string `json:"name" yaml:"name"`
	GoName     string `json:"goName" yaml:"goName"`
	Type       string `json:"type" yaml:"type"`
	GoType     string `json:"goType" yaml:"goType"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	HasDefault bool   `json:"hasDefault,omitempty" yaml:"hasDefault,omitempty"`
	Default    any    `json:"default,omitempty" yaml:"default,omitempty"`
}

type MetaSource struct {
	Entity   string         `json:"entity" yaml:"entity"`
	Optional bool           `json:"optional,omitempty" yaml:"optional,omitempty"`
	Fields   []FieldMapping `json:"fields" yaml:"fields"`
}

func Describe(t *Type) Meta {
	m := Meta{
		Name:     t.name,
		Kind:     t.kind,
		ID:       t.id.String(),
		Version:  t.version,
		Keys:     t.Keys(),
		Excluded: t.ExcludedFields(),
		Fields:   make([]MetaField, 0, len(t.fields)),
	}
	for _, f := range t.fields {
		m.Fields = append(m.Fields, MetaField{
			Name:       f.Name,
			GoName:     f.GoName,
			Type:       f.TypeName,
			GoType:     f.Type.String(),
			Nullable:   f.Nullable,
			HasDefault: f.HasDefault,
			Default:    cloneAny(f.Default),
		})
	}
	for _, s := range t.sources {
		m.Sources = append(m.Sources, MetaSource{
			Entity:   s.Entity.Name(),
			Optional: s.Optional,
			Fields:   append([]FieldMapping(nil), s.Mappings...),
		})
	}
	return m
}
