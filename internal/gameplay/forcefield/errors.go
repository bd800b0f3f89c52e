package forcefield

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid force field configuration")
	ErrNilDependency = errors.New("required dependency is nil")
)
