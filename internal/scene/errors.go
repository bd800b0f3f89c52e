package scene

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid scene configuration")
	ErrUnknownObject = errors.New("unknown object")
	ErrDuplicateName = errors.New("duplicate object name")
)
