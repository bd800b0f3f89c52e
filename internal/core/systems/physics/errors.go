package physics

import "errors"

var (
	ErrInvalidValue = errors.New("invalid value")
)
