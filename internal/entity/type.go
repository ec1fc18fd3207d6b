package entity

import (
	"reflect"

	"github.com/oklog/ulid/v2"
)

type Kind string

const (
	KindSimple   Kind = "simple"
	KindCompound Kind = "compound"
)

// Field describes one field of a produced type.
type Field struct {
	Name       string       `json:"name"`
	GoName     string       `json:"goName"`
	TypeName   string       `json:"type"` // type name as declared in the schema
	Type       reflect.Type `json:"-"`    // resolved type, pointer-wrapped when Nullable
	Nullable   bool         `json:"nullable,omitempty"`
	HasDefault bool         `json:"hasDefault,omitempty"`
	Default    any          `json:"default,omitempty"` // coerced into the base type, nil for a null default
}

// FieldMapping pairs a target field of a compound type with the source field it is read from.
type FieldMapping struct {
	Field       string `json:"field" yaml:"field"`
	SourceField string `json:"source_field" yaml:"source_field"`
}

// Source is one provenance entry of a compound type.
type Source struct {
	Entity   *Type
	Mappings []FieldMapping
	Optional bool
}

// Type is a record type synthesized at runtime. It is immutable once built.
type Type struct {
	id       ulid.ULID
	name     string
	kind     Kind
	version  int
	goType   reflect.Type
	fields   []Field
	index    map[string]int
	keys     []string
	excluded []string
	sources  []Source
}

func (t *Type) ID() ulid.ULID        { return t.id }
func (t *Type) Name() string         { return t.name }
func (t *Type) Kind() Kind           { return t.kind }
func (t *Type) Version() int         { return t.version }
func (t *Type) GoType() reflect.Type { return t.goType }

func (t *Type) Keys() []string           { return append([]string(nil), t.keys...) }
func (t *Type) ExcludedFields() []string { return append([]string(nil), t.excluded...) }

// Fields returns every field name in construction order.
func (t *Type) Fields() []string {
	out := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		out = append(out, f.Name)
	}
	return out
}

// ViewFields returns the field names of the public view, i.e. Fields without the excluded ones.
func (t *Type) ViewFields() []string {
	out := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		if !t.IsExcluded(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

func (t *Type) Field(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i].clone(), true
}

// Descriptors returns copies of the field descriptors; defaults are deep-copied.
func (t *Type) Descriptors() []Field {
	out := make([]Field, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.clone()
	}
	return out
}

func (t *Type) IsExcluded(name string) bool {
	for _, e := range t.excluded {
		if e == name {
			return true
		}
	}
	return false
}

// Sources returns the provenance trail of a compound type in schema order.
func (t *Type) Sources() []Source {
	out := make([]Source, len(t.sources))
	for i, s := range t.sources {
		out[i] = Source{
			Entity:   s.Entity,
			Mappings: append([]FieldMapping(nil), s.Mappings...),
			Optional: s.Optional,
		}
	}
	return out
}

func (t *Type) String() string { return t.name }
