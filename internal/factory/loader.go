package factory

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"entityforge/internal/dsl"
)

// LoadEntities builds every entity of a discriminated document. Simple templates are built
// first and become the known sources of the compound templates. Templates with a missing or
// unknown type are skipped.
func LoadEntities(templates *dsl.Templates, opts ...Option) (Entities, error) {
	o := newOptions(opts)
	simpleTpl, compoundTpl, dropped := templates.Split()
	for _, name := range dropped {
		o.logger.Warn("template skipped, type is neither simple nor compound", zap.String("entity", name))
	}

	simple, err := NewSimpleFactory(opts...).LoadEntities(simpleTpl)
	if simple == nil {
		return nil, err
	}
	compound, cerr := NewCompoundFactory(opts...).LoadEntities(compoundTpl, simple)
	if compound == nil {
		return nil, multierr.Append(err, cerr)
	}

	out := make(Entities, len(simple)+len(compound))
	for name, t := range simple {
		out[name] = t
	}
	for name, t := range compound {
		if _, clash := out[name]; clash {
			o.logger.Warn("compound entity replaces simple entity of the same name", zap.String("entity", name))
		}
		out[name] = t
	}
	return out, multierr.Append(err, cerr)
}

// LoadFlat builds every entity of a flat document, where templates carry no type and are all
// simple. Key fields may not be excluded in this mode.
func LoadFlat(templates *dsl.Templates, opts ...Option) (Entities, error) {
	opts = append(append([]Option(nil), opts...), withFlat())
	return NewSimpleFactory(opts...).LoadEntities(templates)
}
