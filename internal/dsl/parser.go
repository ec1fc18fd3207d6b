package dsl

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Template is one named entry of a templates document.
type Template struct {
	Name string
	File string
	node *yaml.Node
}

// Kind returns the value of the type discriminator, or "" when it is missing or not a string.
func (t Template) Kind() string {
	if t.node == nil || t.node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(t.node.Content); i += 2 {
		k, v := t.node.Content[i], t.node.Content[i+1]
		if k.Value == "type" && v.Kind == yaml.ScalarNode && v.ShortTag() == "!!str" {
			return v.Value
		}
	}
	return ""
}

func (t Template) Simple() (*EntitySchema, error) {
	var s EntitySchema
	if err := t.node.Decode(&s); err != nil {
		return nil, errors.Wrapf(err, "entity %s", t.Name)
	}
	return &s, nil
}

func (t Template) Compound() (*CompoundSchema, error) {
	var s CompoundSchema
	if err := t.node.Decode(&s); err != nil {
		return nil, errors.Wrapf(err, "entity %s", t.Name)
	}
	return &s, nil
}

// Raw returns the template as generic data.
func (t Template) Raw() (any, error) {
	var v any
	if err := t.node.Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "entity %s", t.Name)
	}
	return normalize(v), nil
}

// Templates is an ordered collection of entity templates keyed by entity name.
type Templates struct {
	items []Template
	index map[string]int
}

func NewTemplates() *Templates {
	return &Templates{index: make(map[string]int)}
}

// Parse reads a YAML or JSON templates document: a mapping of entity name to template.
func Parse(data []byte) (*Templates, error) {
	return parse(data, "")
}

func parse(data []byte, file string) (*Templates, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := NewTemplates()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return out, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: templates document must be a mapping of entity names", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if err := out.put(Template{Name: name, File: file, node: root.Content[i+1]}); err != nil {
			return nil, errors.Wrapf(err, "line %d", root.Content[i].Line)
		}
	}
	return out, nil
}

func LoadFile(path string) (*Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	t, err := parse(data, path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

// LoadAll reads every .yaml, .yml and .json file below root (or root itself when it is a file)
// into one collection. An entity name declared twice is an error.
func LoadAll(root string) (*Templates, error) {
	result := NewTemplates()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		t, err := LoadFile(path)
		if err != nil {
			return err
		}
		for _, tpl := range t.items {
			if prev, ok := result.Get(tpl.Name); ok {
				return fmt.Errorf("duplicate entity %q in %s (first declared in %s)", tpl.Name, path, prev.File)
			}
			if err := result.put(tpl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *Templates) put(tpl Template) error {
	if _, ok := t.index[tpl.Name]; ok {
		return fmt.Errorf("duplicate entity %q", tpl.Name)
	}
	t.index[tpl.Name] = len(t.items)
	t.items = append(t.items, tpl)
	return nil
}

// Add appends a template built from a typed schema (*EntitySchema, *CompoundSchema or any
// value that encodes to a mapping).
func (t *Templates) Add(name string, schema any) error {
	var n yaml.Node
	if err := n.Encode(schema); err != nil {
		return errors.Wrapf(err, "entity %s", name)
	}
	return t.put(Template{Name: name, node: &n})
}

func (t *Templates) Len() int { return len(t.items) }

// Names returns entity names in document order.
func (t *Templates) Names() []string {
	out := make([]string, 0, len(t.items))
	for _, tpl := range t.items {
		out = append(out, tpl.Name)
	}
	return out
}

func (t *Templates) Get(name string) (Template, bool) {
	i, ok := t.index[name]
	if !ok {
		return Template{}, false
	}
	return t.items[i], true
}

func (t *Templates) All() []Template {
	return append([]Template(nil), t.items...)
}

// Raw returns the whole document as generic data, suitable for schema validation.
func (t *Templates) Raw() (map[string]any, error) {
	out := make(map[string]any, len(t.items))
	for _, tpl := range t.items {
		v, err := tpl.Raw()
		if err != nil {
			return nil, err
		}
		out[tpl.Name] = v
	}
	return out, nil
}

// Split partitions templates by discriminator. Templates whose discriminator is missing or
// unknown are reported in dropped.
func (t *Templates) Split() (simple, compound *Templates, dropped []string) {
	simple, compound = NewTemplates(), NewTemplates()
	for _, tpl := range t.items {
		switch tpl.Kind() {
		case KindSimple:
			_ = simple.put(tpl)
		case KindCompound:
			_ = compound.put(tpl)
		default:
			dropped = append(dropped, tpl.Name)
		}
	}
	return simple, compound, dropped
}

// normalize turns map[any]any produced for non-string keys into map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}
