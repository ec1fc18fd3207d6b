package entity

import (
	"fmt"
	"go/token"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// Builder accumulates field descriptors and produces a Type.
//
// Fields without a default are placed before fields with a default; inside each group the
// order of first appearance is kept. Adding a field whose name was already added replaces the
// earlier descriptor but keeps its position.
type Builder struct {
	name     string
	kind     Kind
	version  int
	order    []string
	fields   map[string]Field
	keys     []string
	excluded []string
	sources  []Source
}

func NewBuilder(name string, kind Kind) *Builder {
	return &Builder{
		name:   name,
		kind:   kind,
		fields: make(map[string]Field),
	}
}

func (b *Builder) Version(v int) *Builder {
	b.version = v
	return b
}

func (b *Builder) Key(name string) *Builder {
	b.keys = append(b.keys, name)
	return b
}

func (b *Builder) Exclude(name string) *Builder {
	b.excluded = append(b.excluded, name)
	return b
}

func (b *Builder) Source(s Source) *Builder {
	b.sources = append(b.sources, s)
	return b
}

// Add registers f and reports whether it replaced an earlier field of the same name.
func (b *Builder) Add(f Field) bool {
	_, replaced := b.fields[f.Name]
	if !replaced {
		b.order = append(b.order, f.Name)
	}
	b.fields[f.Name] = f.clone()
	return replaced
}

func (b *Builder) Build() (*Type, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("entity name is empty")
	}

	ordered := make([]Field, 0, len(b.order))
	for _, name := range b.order {
		if f := b.fields[name]; !f.HasDefault {
			ordered = append(ordered, f)
		}
	}
	for _, name := range b.order {
		if f := b.fields[name]; f.HasDefault {
			ordered = append(ordered, f)
		}
	}

	index := make(map[string]int, len(ordered))
	goNames := make(map[string]string, len(ordered))
	structFields := make([]reflect.StructField, 0, len(ordered))
	for i := range ordered {
		f := &ordered[i]
		if f.Type == nil {
			return nil, fmt.Errorf("field %q has no type", f.Name)
		}
		f.GoName = goFieldName(f.Name)
		if prev, clash := goNames[f.GoName]; clash {
			return nil, fmt.Errorf("%w: %q and %q both map to %s", ErrFieldNameCollision, prev, f.Name, f.GoName)
		}
		goNames[f.GoName] = f.Name
		index[f.Name] = i
		structFields = append(structFields, reflect.StructField{
			Name: f.GoName,
			Type: f.Type,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:"%s" yaml:"%s"`, f.Name, f.Name)),
		})
	}

	for _, k := range b.keys {
		if _, ok := index[k]; !ok {
			return nil, fmt.Errorf("key %q is not a field of %s", k, b.name)
		}
	}
	for _, e := range b.excluded {
		if _, ok := index[e]; !ok {
			return nil, fmt.Errorf("excluded field %q is not a field of %s", e, b.name)
		}
	}

	goType, err := structOf(structFields)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(b.sources))
	for i, s := range b.sources {
		sources[i] = Source{
			Entity:   s.Entity,
			Mappings: append([]FieldMapping(nil), s.Mappings...),
			Optional: s.Optional,
		}
	}

	return &Type{
		id:       newID(),
		name:     b.name,
		kind:     b.kind,
		version:  b.version,
		goType:   goType,
		fields:   ordered,
		index:    index,
		keys:     append([]string(nil), b.keys...),
		excluded: append([]string(nil), b.excluded...),
		sources:  sources,
	}, nil
}

func structOf(fields []reflect.StructField) (t reflect.Type, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot build struct type: %v", r)
		}
	}()
	return reflect.StructOf(fields), nil
}

// goFieldName turns a schema field name into an exported Go identifier.
func goFieldName(name string) string {
	n := strcase.ToCamel(name)
	if token.IsIdentifier(n) && token.IsExported(n) {
		return n
	}
	n = "F" + n
	if token.IsIdentifier(n) {
		return n
	}
	var sb strings.Builder
	for _, r := range n {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
