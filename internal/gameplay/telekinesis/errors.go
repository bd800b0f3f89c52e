package telekinesis

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid telekinesis configuration")
	ErrNilDependency = errors.New("required dependency is nil")
)
