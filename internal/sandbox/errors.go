package sandbox

import "errors"

var (
	ErrInvalidShape    = errors.New("invalid shape")
	ErrInvalidObject   = errors.New("invalid object")
	ErrDuplicateObject = errors.New("object already in world")
	ErrObjectNotFound  = errors.New("object not found")
)
