package entity

import "errors"

var (
	ErrMissingField       = errors.New("missing field")
	ErrUnknownField       = errors.New("unknown field")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrMissingSource      = errors.New("missing source record")
	ErrFieldNameCollision = errors.New("field name collision")
)
