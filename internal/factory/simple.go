// Package factory synthesizes entity types from templates.
package factory

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"entityforge/internal/dsl"
	"entityforge/internal/entity"
	"entityforge/internal/validate"
)

// SimpleFactory builds entity types from simple templates.
type SimpleFactory struct {
	opts options
}

func NewSimpleFactory(opts ...Option) *SimpleFactory {
	return &SimpleFactory{opts: newOptions(opts)}
}

// LoadEntities validates templates and synthesizes one type per template.
//
// A validation failure is returned as is and nothing is built. Otherwise every template is
// attempted: failed entities are left out of the result and their errors are combined into the
// returned error.
func (f *SimpleFactory) LoadEntities(templates *dsl.Templates) (Entities, error) {
	raw, err := templates.Raw()
	if err != nil {
		return nil, err
	}
	check := validate.Templates
	if f.opts.flat {
		check = validate.FlatTemplates
	}
	if err := check(raw); err != nil {
		return nil, err
	}

	out := make(Entities, templates.Len())
	var errs error
	for _, tpl := range templates.All() {
		if !f.opts.flat && tpl.Kind() != dsl.KindSimple {
			errs = multierr.Append(errs, &EntityError{Entity: tpl.Name, Err: fmt.Errorf("template type %q is not %s", tpl.Kind(), dsl.KindSimple)})
			continue
		}
		typ, err := f.create(tpl)
		if err != nil {
			f.opts.logger.Debug("entity not synthesized", zap.String("entity", tpl.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		f.opts.logger.Debug("entity synthesized",
			zap.String("entity", tpl.Name),
			zap.Stringer("id", typ.ID()),
			zap.Strings("fields", typ.Fields()),
		)
		out[tpl.Name] = typ
	}
	return out, errs
}

func (f *SimpleFactory) create(tpl dsl.Template) (*entity.Type, error) {
	schema, err := tpl.Simple()
	if err != nil {
		return nil, &EntityError{Entity: tpl.Name, Err: err}
	}

	b := entity.NewBuilder(tpl.Name, entity.KindSimple).Version(schema.Version)
	for _, p := range schema.Properties {
		fs := p.Schema
		if err := validate.LintField(tpl.Name, p.Name, fs, f.opts.rules...); err != nil {
			return nil, &EntityError{Entity: tpl.Name, Field: p.Name, Err: err}
		}
		base, err := f.opts.resolver.Resolve(fs.Type)
		if err != nil {
			return nil, &EntityError{Entity: tpl.Name, Field: p.Name, Err: err}
		}

		field := entity.Field{
			Name:       p.Name,
			TypeName:   fs.Type,
			Type:       base,
			Nullable:   fs.Optional,
			HasDefault: fs.HasDefault,
		}
		if fs.Optional {
			field.Type = reflect.PointerTo(base)
		}
		if fs.HasDefault && (fs.Default != nil || !fs.Optional) {
			v, err := entity.Coerce(fs.Default, base)
			if err != nil {
				return nil, &EntityError{Entity: tpl.Name, Field: p.Name, Err: fmt.Errorf("default: %w", err)}
			}
			field.Default = v.Interface()
		}

		if fs.Key {
			b.Key(p.Name)
		}
		if fs.Excluded {
			b.Exclude(p.Name)
		}
		b.Add(field)
	}

	typ, err := b.Build()
	if err != nil {
		return nil, &EntityError{Entity: tpl.Name, Err: err}
	}
	return typ, nil
}
