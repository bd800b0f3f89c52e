package platform

import "github.com/zeusync/kinetix/internal/core/systems/physics"

type fakeBody struct {
	pos, vel  physics.Vec3
	kinematic bool
}

func (b *fakeBody) Position() physics.Vec3                   { return b.pos }
func (b *fakeBody) SetPosition(p physics.Vec3)               { b.pos = p }
func (b *fakeBody) Velocity() physics.Vec3                   { return b.vel }
func (b *fakeBody) SetVelocity(v physics.Vec3)               { b.vel = v }
func (b *fakeBody) AddForce(physics.Vec3, physics.ForceMode) {}
func (b *fakeBody) Mass() float64                            { return 1 }
func (b *fakeBody) IsKinematic() bool                        { return b.kinematic }
func (b *fakeBody) Layer() physics.Layer                     { return 0 }

// integrate moves the body by its velocity the way the host engine would
// after the gameplay step.
func (b *fakeBody) integrate(dt float64) { b.pos = b.pos.Add(b.vel.Mul(dt)) }

type fakeEntity struct {
	name string
	caps []any
}

func (e *fakeEntity) ID() physics.EntityID { return physics.EntityID(e.name) }
func (e *fakeEntity) Name() string         { return e.name }
func (e *fakeEntity) Capabilities() []any  { return e.caps }
