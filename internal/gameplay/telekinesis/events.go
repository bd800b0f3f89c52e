package telekinesis

import "github.com/go-gl/mathgl/mgl64"

const (
	EventTargetChanged = "telekinesis.target_changed"
	EventStateChanged  = "telekinesis.state_changed"
)

// TargetChanged is the payload of EventTargetChanged. Target is empty when
// the target was lost.
type TargetChanged struct {
	Controller   string
	Target       string
	HitPoint     mgl64.Vec3
	OutsideRange bool
}

// StateChanged is the payload of EventStateChanged.
type StateChanged struct {
	Controller string
	From       State
	To         State
}
