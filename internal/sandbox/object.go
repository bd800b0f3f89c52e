package sandbox

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// ObjectConfig describes an object before it is added to a World.
type ObjectConfig struct {
	// ID is generated when left as uuid.Nil.
	ID       uuid.UUID
	Name     string
	Position physics.Vec3
	Rotation physics.Quat
	Velocity physics.Vec3
	Shape    Shape
	// Mass defaults to 1.
	Mass float64
	// Drag is a linear damping coefficient per second.
	Drag float64
	// Kinematic objects move by their velocity but ignore forces and
	// gravity.
	Kinematic bool
	// Trigger colliders report overlaps and are skipped by raycasts unless
	// the world is told otherwise.
	Trigger bool
	Gravity bool
	Layer   physics.Layer
}

// Object is an entity simulated by the sandbox world. Behaviour is attached
// through capabilities: a *Rigidbody makes it a physics.Body, a
// *PlayerController a physics.Player, and any physics.ContactListener
// receives its overlap notifications.
type Object struct {
	id   uuid.UUID
	name string

	position physics.Vec3
	rotation physics.Quat
	velocity physics.Vec3
	shape    Shape
	mass     float64
	drag     float64

	kinematic bool
	trigger   bool
	gravity   bool
	layer     physics.Layer

	// per-step accumulators, cleared after integration
	acceleration physics.Vec3
	velocityDiff physics.Vec3

	caps []any
}

var (
	_ physics.Entity   = (*Object)(nil)
	_ physics.Movable  = (*Object)(nil)
	_ physics.Oriented = (*Object)(nil)
)

func NewObject(cfg ObjectConfig) (*Object, error) {
	if err := cfg.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("object %q: %w", cfg.Name, err)
	}
	if cfg.Mass == 0 {
		cfg.Mass = 1
	}
	if !(cfg.Mass > 0) || math.IsInf(cfg.Mass, 0) {
		return nil, fmt.Errorf("%w: object %q mass must be positive", ErrInvalidObject, cfg.Name)
	}
	if cfg.Drag < 0 {
		return nil, fmt.Errorf("%w: object %q drag must not be negative", ErrInvalidObject, cfg.Name)
	}
	if !physics.IsFinite(cfg.Position) || !physics.IsFinite(cfg.Velocity) {
		return nil, fmt.Errorf("%w: object %q has a non-finite position or velocity", ErrInvalidObject, cfg.Name)
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Rotation == (physics.Quat{}) {
		cfg.Rotation = physics.Identity()
	}
	return &Object{
		id:        cfg.ID,
		name:      cfg.Name,
		position:  cfg.Position,
		rotation:  cfg.Rotation.Normalize(),
		velocity:  cfg.Velocity,
		shape:     cfg.Shape,
		mass:      cfg.Mass,
		drag:      cfg.Drag,
		kinematic: cfg.Kinematic,
		trigger:   cfg.Trigger,
		gravity:   cfg.Gravity,
		layer:     cfg.Layer,
	}, nil
}

func (o *Object) ID() physics.EntityID { return physics.EntityID(o.id.String()) }
func (o *Object) UUID() uuid.UUID      { return o.id }
func (o *Object) Name() string         { return o.name }
func (o *Object) Capabilities() []any  { return o.caps }

// AddCapability attaches behaviour to the object. Order matters for
// capability lookup: the first match wins.
func (o *Object) AddCapability(caps ...any) { o.caps = append(o.caps, caps...) }

func (o *Object) Position() physics.Vec3     { return o.position }
func (o *Object) SetPosition(p physics.Vec3) { o.position = p }
func (o *Object) Velocity() physics.Vec3     { return o.velocity }
func (o *Object) SetVelocity(v physics.Vec3) { o.velocity = v }
func (o *Object) Rotation() physics.Quat     { return o.rotation }
func (o *Object) SetRotation(q physics.Quat) { o.rotation = q.Normalize() }
func (o *Object) Shape() Shape               { return o.shape }
func (o *Object) Mass() float64              { return o.mass }
func (o *Object) IsKinematic() bool          { return o.kinematic }
func (o *Object) IsTrigger() bool            { return o.trigger }
func (o *Object) Layer() physics.Layer       { return o.layer }

// Transform returns the object's world transform.
func (o *Object) Transform() physics.Transform {
	return physics.Transform{Position: o.position, Rotation: o.rotation}
}

// EnableBody attaches and returns the rigid body capability.
func (o *Object) EnableBody() *Rigidbody {
	if rb, ok := physics.Capability[*Rigidbody](o); ok {
		return rb
	}
	rb := &Rigidbody{Object: o}
	o.AddCapability(rb)
	return rb
}

// EnablePlayer attaches and returns the player capability.
func (o *Object) EnablePlayer() *PlayerController {
	if p, ok := physics.Capability[*PlayerController](o); ok {
		return p
	}
	p := &PlayerController{object: o}
	o.AddCapability(p)
	return p
}

func (o *Object) integrate(dt float64, gravity physics.Vec3) {
	if !o.kinematic {
		accel := o.acceleration
		if o.gravity {
			accel = accel.Add(gravity)
		}
		o.velocity = o.velocity.Add(accel.Mul(dt)).Add(o.velocityDiff)
		if o.drag > 0 {
			o.velocity = o.velocity.Mul(1 / (1 + o.drag*dt))
		}
	}
	o.position = o.position.Add(o.velocity.Mul(dt))
	o.acceleration = physics.Zero
	o.velocityDiff = physics.Zero
}

// Rigidbody is the physics.Body view of an Object.
type Rigidbody struct {
	*Object
}

var _ physics.Body = (*Rigidbody)(nil)

// AddForce queues v for the next integration step. Kinematic bodies ignore
// forces.
func (b *Rigidbody) AddForce(v physics.Vec3, mode physics.ForceMode) {
	if b.kinematic || !physics.IsFinite(v) {
		return
	}
	if mode.MassScaled() {
		v = v.Mul(1 / b.mass)
	}
	if mode.IsContinuous() {
		b.acceleration = b.acceleration.Add(v)
	} else {
		b.velocityDiff = b.velocityDiff.Add(v)
	}
}

// PlayerController is the physics.Player view of an Object. Velocity deltas
// apply immediately.
type PlayerController struct {
	object *Object
}

var _ physics.Player = (*PlayerController)(nil)

func (p *PlayerController) AddVelocity(v physics.Vec3) {
	if !physics.IsFinite(v) {
		return
	}
	p.object.velocity = p.object.velocity.Add(v)
}

func (p *PlayerController) Object() *Object { return p.object }
