package bus

import "errors"

var (
	ErrNilEvent            = errors.New("event is nil")
	ErrInvalidSubscription = errors.New("invalid subscription")
)
