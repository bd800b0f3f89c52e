package systems

import "errors"

var (
	ErrNilSystem        = errors.New("system is nil")
	ErrDuplicateSystem  = errors.New("system already registered")
	ErrSystemNotFound   = errors.New("system not found")
	ErrInvalidTimestep  = errors.New("fixed timestep must be positive")
	ErrManagerDestroyed = errors.New("manager is destroyed")
)
