package platform

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid platform configuration")
	ErrNilDependency = errors.New("required dependency is nil")
)
