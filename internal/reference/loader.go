package reference

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"entityforge/internal/resolver"
)

// Catalog is the set of extension type groups read from a directory.
type Catalog struct {
	Groups map[string]TypeGroup
	origin map[string]string // type name -> file it was declared in
}

// LoadTypeCatalog reads every *.yaml / *.yml file of dir.
func LoadTypeCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read type catalog %s", dir)
	}
	c := &Catalog{
		Groups: make(map[string]TypeGroup),
		origin: make(map[string]string),
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		var group TypeGroup
		if err := yaml.Unmarshal(data, &group); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		// group name defaults to the file name
		if group.Name == "" {
			group.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		for i, item := range group.Types {
			if strings.TrimSpace(item.Name) == "" {
				return nil, errors.Errorf("%s: type #%d has no name", path, i+1)
			}
			if prev, dup := c.origin[item.Name]; dup {
				return nil, errors.Errorf("type %q declared in both %s and %s", item.Name, prev, path)
			}
			c.origin[item.Name] = path
		}
		c.Groups[group.Name] = group
	}
	return c, nil
}

// Types binds every catalog entry to its Go type.
func (c *Catalog) Types() (map[string]reflect.Type, error) {
	out := make(map[string]reflect.Type)
	for _, g := range c.Groups {
		for _, item := range g.Types {
			typ, err := resolver.KindOf(item.Kind)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: type %q", c.origin[item.Name], item.Name)
			}
			out[item.Name] = typ
		}
	}
	return out, nil
}

// Names lists every declared type name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.origin))
	for n := range c.origin {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
