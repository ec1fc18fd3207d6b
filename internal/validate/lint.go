package validate

import (
	"fmt"

	"entityforge/internal/dsl"
)

// Rule is a field-level constraint checked again at synthesis time, for templates that
// reach a factory without going through schema validation.
type Rule string

const (
	KeyOptional Rule = "key_optional"
	KeyDefault  Rule = "key_default"
	KeyExcluded Rule = "key_excluded"
)

var (
	// Rules apply to discriminated documents.
	Rules = []Rule{KeyOptional, KeyDefault}
	// FlatRules apply to flat documents, where a key field may not be excluded either.
	FlatRules = []Rule{KeyOptional, KeyDefault, KeyExcluded}
)

type LintError struct {
	Entity string
	Field  string
	Rule   Rule
}

func (e *LintError) Error() string {
	var what string
	switch e.Rule {
	case KeyOptional:
		what = "key can not be optional"
	case KeyDefault:
		what = "key can not have a default value"
	case KeyExcluded:
		what = "key can not be excluded"
	default:
		what = string(e.Rule)
	}
	return fmt.Sprintf("wrong %s.%s field schema: %s", e.Entity, e.Field, what)
}

// LintField returns the first rule fs violates, or nil.
func LintField(entity, field string, fs dsl.FieldSchema, rules ...Rule) error {
	if !fs.Key {
		return nil
	}
	for _, r := range rules {
		var bad bool
		switch r {
		case KeyOptional:
			bad = fs.Optional
		case KeyDefault:
			bad = fs.HasDefault
		case KeyExcluded:
			bad = fs.Excluded
		}
		if bad {
			return &LintError{Entity: entity, Field: field, Rule: r}
		}
	}
	return nil
}
