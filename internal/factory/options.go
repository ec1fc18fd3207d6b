package factory

import (
	"reflect"

	"go.uber.org/zap"

	"entityforge/internal/resolver"
	"entityforge/internal/validate"
)

type options struct {
	types    map[string]reflect.Type
	resolver resolver.Resolver
	logger   *zap.Logger
	rules    []validate.Rule
	flat     bool
}

type Option func(*options)

// WithTypes sets the extension type table consulted after the built-in type names.
func WithTypes(types map[string]reflect.Type) Option {
	return func(o *options) { o.types = types }
}

// WithResolver replaces the type resolver; WithTypes is ignored when set.
func WithResolver(r resolver.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFieldRules overrides the field rules checked during synthesis.
func WithFieldRules(rules ...validate.Rule) Option {
	return func(o *options) { o.rules = rules }
}

func withFlat() Option {
	return func(o *options) { o.flat = true }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = resolver.New(o.types)
	}
	if o.logger == nil {
		o.logger = zap.L()
	}
	if o.rules == nil {
		o.rules = validate.Rules
		if o.flat {
			o.rules = validate.FlatRules
		}
	}
	return o
}
