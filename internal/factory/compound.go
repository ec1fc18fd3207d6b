package factory

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"entityforge/internal/dsl"
	"entityforge/internal/entity"
	"entityforge/internal/validate"
)

// CompoundFactory builds entity types by remapping fields of already built types.
type CompoundFactory struct {
	opts options
}

func NewCompoundFactory(opts ...Option) *CompoundFactory {
	return &CompoundFactory{opts: newOptions(opts)}
}

// LoadEntities validates templates and synthesizes one compound type per template, reading
// sources from known. Failure handling matches SimpleFactory.LoadEntities.
func (f *CompoundFactory) LoadEntities(templates *dsl.Templates, known Entities) (Entities, error) {
	raw, err := templates.Raw()
	if err != nil {
		return nil, err
	}
	if err := validate.Templates(raw); err != nil {
		return nil, err
	}

	out := make(Entities, templates.Len())
	var errs error
	for _, tpl := range templates.All() {
		if tpl.Kind() != dsl.KindCompound {
			errs = multierr.Append(errs, &EntityError{Entity: tpl.Name, Err: fmt.Errorf("template type %q is not %s", tpl.Kind(), dsl.KindCompound)})
			continue
		}
		typ, err := f.create(tpl, known)
		if err != nil {
			f.opts.logger.Debug("entity not synthesized", zap.String("entity", tpl.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		f.opts.logger.Debug("entity synthesized",
			zap.String("entity", tpl.Name),
			zap.Stringer("id", typ.ID()),
			zap.Strings("fields", typ.Fields()),
			zap.Int("sources", len(typ.Sources())),
		)
		out[tpl.Name] = typ
	}
	return out, errs
}

func (f *CompoundFactory) create(tpl dsl.Template, known Entities) (*entity.Type, error) {
	schema, err := tpl.Compound()
	if err != nil {
		return nil, &EntityError{Entity: tpl.Name, Err: err}
	}

	// every source must exist before any field is looked at
	sources := make([]*entity.Type, len(schema.Sources))
	for i, s := range schema.Sources {
		src, ok := known[s.Entity]
		if !ok {
			return nil, &EntityError{Entity: tpl.Name, Err: &NonExistingSourceEntityError{Entity: tpl.Name, Source: s.Entity}}
		}
		sources[i] = src
	}

	b := entity.NewBuilder(tpl.Name, entity.KindCompound)
	from := make(map[string]string)
	for i, s := range schema.Sources {
		src := sources[i]
		mappings := make([]entity.FieldMapping, 0, len(s.Fields))
		for _, m := range s.Fields {
			field, ok := src.Field(m.SourceField)
			if !ok {
				return nil, &EntityError{
					Entity: tpl.Name,
					Field:  m.Field,
					Err:    &SourceEntityFieldError{Entity: tpl.Name, Source: src.Name(), SourceField: m.SourceField},
				}
			}
			field.Name = m.Field
			field.GoName = ""
			if b.Add(field) {
				f.opts.logger.Warn("compound field redefined, later source wins",
					zap.String("entity", tpl.Name),
					zap.String("field", m.Field),
					zap.String("previous", from[m.Field]),
					zap.String("source", src.Name()),
				)
			}
			from[m.Field] = src.Name()
			mappings = append(mappings, entity.FieldMapping{Field: m.Field, SourceField: m.SourceField})
		}
		b.Source(entity.Source{Entity: src, Mappings: mappings, Optional: s.Optional})
	}

	typ, err := b.Build()
	if err != nil {
		return nil, &EntityError{Entity: tpl.Name, Err: err}
	}
	return typ, nil
}
