package entity

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Record is an instance of a synthesized Type.
type Record struct {
	typ *Type
	val reflect.Value // addressable struct of typ.goType
}

// New builds a record from named values. Fields absent from values take their default.
func (t *Type) New(values map[string]any) (*Record, error) {
	unknown := make([]string, 0)
	for name := range values {
		if _, ok := t.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: %w %q", t.name, ErrUnknownField, unknown[0])
	}

	r := t.zero()
	for i, f := range t.fields {
		v, ok := values[f.Name]
		if !ok {
			if !f.HasDefault {
				return nil, fmt.Errorf("%s: %w %q", t.name, ErrMissingField, f.Name)
			}
			r.setDefault(i)
			continue
		}
		if err := r.set(i, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewPositional builds a record from values in field order. Trailing defaulted fields may be
// omitted.
func (t *Type) NewPositional(args ...any) (*Record, error) {
	if len(args) > len(t.fields) {
		return nil, fmt.Errorf("%s: takes at most %d values, got %d", t.name, len(t.fields), len(args))
	}
	r := t.zero()
	for i, f := range t.fields {
		if i < len(args) {
			if err := r.set(i, args[i]); err != nil {
				return nil, err
			}
			continue
		}
		if !f.HasDefault {
			return nil, fmt.Errorf("%s: %w %q", t.name, ErrMissingField, f.Name)
		}
		r.setDefault(i)
	}
	return r, nil
}

// Compose builds a record of a compound type from records of its source types, keyed by source
// entity name. A field mapped by several sources is read from the last present source whose
// field has the same type; when there is none it keeps its default or zero value.
func (t *Type) Compose(sources map[string]*Record) (*Record, error) {
	present := make([]*Record, len(t.sources))
	for i, s := range t.sources {
		src, ok := sources[s.Entity.Name()]
		if !ok || src == nil {
			if s.Optional {
				continue
			}
			return nil, fmt.Errorf("%s: %w %q", t.name, ErrMissingSource, s.Entity.Name())
		}
		if src.typ != s.Entity {
			return nil, fmt.Errorf("%s: %w: record for source %q is of a different type", t.name, ErrTypeMismatch, s.Entity.Name())
		}
		present[i] = src
	}

	r := t.zero()
	for i, f := range t.fields {
		if f.HasDefault {
			r.setDefault(i)
		}
	}
	for i, f := range t.fields {
		src, from, ok := t.feeder(f, present)
		if !ok {
			continue
		}
		v, _ := src.Get(from)
		if err := r.set(i, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// feeder picks the record and source field that fill f. Sources are scanned from last to first;
// the last one mapping f always qualifies since f was copied from it.
func (t *Type) feeder(f Field, present []*Record) (*Record, string, bool) {
	for i := len(t.sources) - 1; i >= 0; i-- {
		if present[i] == nil {
			continue
		}
		s := t.sources[i]
		for _, m := range s.Mappings {
			if m.Field != f.Name {
				continue
			}
			sf, ok := s.Entity.Field(m.SourceField)
			if ok && sf.Type == f.Type {
				return present[i], m.SourceField, true
			}
		}
	}
	return nil, "", false
}

func (t *Type) zero() *Record {
	return &Record{typ: t, val: reflect.New(t.goType).Elem()}
}

func (r *Record) set(i int, v any) error {
	f := r.typ.fields[i]
	cv, err := Coerce(v, f.Type)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", r.typ.name, f.Name, err)
	}
	// records never share memory with the caller
	r.val.Field(i).Set(deepCopy(cv))
	return nil
}

func (r *Record) setDefault(i int) {
	f := r.typ.fields[i]
	if f.Default == nil {
		return
	}
	dv := deepCopy(reflect.ValueOf(f.Default))
	if f.Type.Kind() == reflect.Pointer && dv.Type() != f.Type {
		p := reflect.New(f.Type.Elem())
		p.Elem().Set(dv)
		dv = p
	}
	r.val.Field(i).Set(dv)
}

func (r *Record) Type() *Type { return r.typ }

// Get returns a copy of a field value. Nullable fields yield a pointer (nil when unset).
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.typ.index[name]
	if !ok {
		return nil, false
	}
	return r.field(i), true
}

func (r *Record) field(i int) any { return deepCopy(r.val.Field(i)).Interface() }

// Map returns all fields keyed by name.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.typ.fields))
	for i, f := range r.typ.fields {
		out[f.Name] = r.field(i)
	}
	return out
}

// View returns the public fields, excluded ones omitted.
func (r *Record) View() map[string]any {
	out := make(map[string]any, len(r.typ.fields))
	for i, f := range r.typ.fields {
		if !r.typ.IsExcluded(f.Name) {
			out[f.Name] = r.field(i)
		}
	}
	return out
}

// KeyValues returns the key field values in key declaration order.
func (r *Record) KeyValues() []any {
	out := make([]any, 0, len(r.typ.keys))
	for _, k := range r.typ.keys {
		out = append(out, r.field(r.typ.index[k]))
	}
	return out
}

func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.typ == o.typ && reflect.DeepEqual(r.val.Interface(), o.val.Interface())
}

// Interface returns a pointer to the underlying struct value. Writes through it change the
// record.
func (r *Record) Interface() any { return r.val.Addr().Interface() }

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.val.Interface())
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%+v", r.typ.name, r.val.Interface())
}
