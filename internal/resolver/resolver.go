// Package resolver maps schema type names to Go types.
package resolver

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

type Resolver interface {
	Resolve(name string) (reflect.Type, error)
}

type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Builtins are the type names every template may use.
var Builtins = map[string]reflect.Type{
	"int":       reflect.TypeOf(int64(0)),
	"str":       reflect.TypeOf(""),
	"float":     reflect.TypeOf(float64(0)),
	"bool":      reflect.TypeOf(false),
	"bytes":     reflect.TypeOf([]byte(nil)),
	"bytearray": reflect.TypeOf([]byte(nil)),
	"complex":   reflect.TypeOf(complex128(0)),
	"list":      reflect.TypeOf([]any(nil)),
	"tuple":     reflect.TypeOf([]any(nil)),
	"dict":      reflect.TypeOf(map[string]any(nil)),
	"object":    anyType,
}

// GoKinds names the Go types an extension catalog may bind a type name to.
var GoKinds = map[string]reflect.Type{
	"int":      reflect.TypeOf(int(0)),
	"int8":     reflect.TypeOf(int8(0)),
	"int16":    reflect.TypeOf(int16(0)),
	"int32":    reflect.TypeOf(int32(0)),
	"int64":    reflect.TypeOf(int64(0)),
	"uint":     reflect.TypeOf(uint(0)),
	"uint8":    reflect.TypeOf(uint8(0)),
	"uint16":   reflect.TypeOf(uint16(0)),
	"uint32":   reflect.TypeOf(uint32(0)),
	"uint64":   reflect.TypeOf(uint64(0)),
	"float32":  reflect.TypeOf(float32(0)),
	"float64":  reflect.TypeOf(float64(0)),
	"string":   reflect.TypeOf(""),
	"bool":     reflect.TypeOf(false),
	"bytes":    reflect.TypeOf([]byte(nil)),
	"time":     reflect.TypeOf(time.Time{}),
	"duration": reflect.TypeOf(time.Duration(0)),
	"any":      anyType,
}

// Table resolves built-ins first and the extension table second.
type Table struct {
	ext map[string]reflect.Type
}

func New(ext map[string]reflect.Type) *Table {
	cp := make(map[string]reflect.Type, len(ext))
	for k, v := range ext {
		cp[k] = v
	}
	return &Table{ext: cp}
}

func (t *Table) Resolve(name string) (reflect.Type, error) {
	if typ, ok := Builtins[name]; ok {
		return typ, nil
	}
	if typ, ok := t.ext[name]; ok && typ != nil {
		return typ, nil
	}
	return nil, &UnknownTypeError{Name: name}
}

// Names lists every resolvable name, sorted.
func (t *Table) Names() []string {
	seen := make(map[string]struct{}, len(Builtins)+len(t.ext))
	for k := range Builtins {
		seen[k] = struct{}{}
	}
	for k := range t.ext {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KindOf returns the Go type registered under a GoKinds name.
func KindOf(kind string) (reflect.Type, error) {
	if typ, ok := GoKinds[kind]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("unknown go kind %q", kind)
}
