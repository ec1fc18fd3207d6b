package factory

import "fmt"

// EntityError reports why one entity could not be synthesized.
type EntityError struct {
	Entity string
	Field  string
	Err    error
}

func (e *EntityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("entity %s: field %s: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("entity %s: %v", e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

// NonExistingSourceEntityError is returned when a compound template names a source that was
// not built.
type NonExistingSourceEntityError struct {
	Entity string
	Source string
}

func (e *NonExistingSourceEntityError) Error() string {
	return fmt.Sprintf("source entity %s does not exist", e.Source)
}

// SourceEntityFieldError is returned when a mapping reads a field the source does not declare.
type SourceEntityFieldError struct {
	Entity      string
	Source      string
	SourceField string
}

func (e *SourceEntityFieldError) Error() string {
	return fmt.Sprintf("source entity %s field %s does not exist", e.Source, e.SourceField)
}
