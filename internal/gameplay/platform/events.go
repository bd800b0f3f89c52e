package platform

import "github.com/go-gl/mathgl/mgl64"

// Event types published on the bus.
const (
	EventMotionState    = "platform.motion_state"
	EventSurfaceEntered = "platform.surface_entered"
	EventSurfaceExited  = "platform.surface_exited"
)

// MotionStateChanged is the payload of EventMotionState.
type MotionStateChanged struct {
	Platform string
	From     MotionState
	To       MotionState
	Position mgl64.Vec3
}

// SurfaceContact is the payload of the surface events.
type SurfaceContact struct {
	Surface string
	Rider   string
}
