package physics

// Ports the gameplay code consumes. The host physics engine implements
// them; gameplay code never integrates motion or detects contacts itself.

// EntityID identifies an entity inside one engine instance.
type EntityID string

// Entity is a scene object carrying a set of capabilities (bodies, players,
// listeners, trackers). Capability lookup replaces component queries.
type Entity interface {
	ID() EntityID
	Name() string
	Capabilities() []any
}

// Capability returns the first capability of e assignable to T.
func Capability[T any](e Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, c := range e.Capabilities() {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Positioned exposes a world position.
type Positioned interface {
	Position() Vec3
}

// Movable is a transform whose position can be assigned.
type Movable interface {
	Positioned
	SetPosition(Vec3)
}

// Oriented exposes a world orientation.
type Oriented interface {
	Rotation() Quat
}

// Body is a simulated rigid body.
type Body interface {
	Movable
	Velocity() Vec3
	SetVelocity(Vec3)
	// AddForce queues v for the next integration step using the mode's
	// semantics.
	AddForce(v Vec3, mode ForceMode)
	Mass() float64
	IsKinematic() bool
	Layer() Layer
}

// Player is a character controller able to take velocity deltas.
type Player interface {
	AddVelocity(Vec3)
}

// Hit is the result of a successful raycast.
type Hit struct {
	Point    Vec3
	Distance float64
	Entity   Entity
	// Body is nil when the hit collider has no rigid body.
	Body Body
}

// Raycaster casts rays against the scene colliders.
type Raycaster interface {
	// Raycast returns the nearest hit within maxDistance on a layer in mask.
	Raycast(ray Ray, maxDistance float64, mask LayerMask) (Hit, bool)
}

// Camera produces world rays through viewport coordinates in [0,1].
type Camera interface {
	ViewportRay(x, y float64) Ray
}

// Contact is one overlap notification between the listener's collider and
// Other.
type Contact struct {
	Other Entity
	// DeltaTime is the physics step that produced the notification.
	DeltaTime float64
}

// ContactListener receives overlap notifications from the engine.
// Begin and End are delivered once per overlap; Persist once per step in
// between, starting with the step after Begin.
type ContactListener interface {
	OnContactBegin(Contact)
	OnContactPersist(Contact)
	OnContactEnd(Contact)
}

// ContactFuncs adapts plain functions to ContactListener. Nil fields are
// ignored.
type ContactFuncs struct {
	Begin   func(Contact)
	Persist func(Contact)
	End     func(Contact)
}

func (f ContactFuncs) OnContactBegin(c Contact) {
	if f.Begin != nil {
		f.Begin(c)
	}
}

func (f ContactFuncs) OnContactPersist(c Contact) {
	if f.Persist != nil {
		f.Persist(c)
	}
}

func (f ContactFuncs) OnContactEnd(c Contact) {
	if f.End != nil {
		f.End(c)
	}
}
