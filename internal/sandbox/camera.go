package sandbox

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// Camera is a pinhole camera looking down its local +Z axis with +Y up and
// +X right. It can follow a positioned anchor at a fixed offset.
type Camera struct {
	position physics.Vec3
	rotation physics.Quat
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Aspect is width over height.
	Aspect float64

	anchor physics.Positioned
	offset physics.Vec3
}

var (
	_ physics.Camera   = (*Camera)(nil)
	_ physics.Oriented = (*Camera)(nil)
)

func NewCamera(position physics.Vec3, rotation physics.Quat) *Camera {
	if rotation == (physics.Quat{}) {
		rotation = physics.Identity()
	}
	return &Camera{position: position, rotation: rotation.Normalize(), FOV: 60, Aspect: 16.0 / 9.0}
}

// Attach makes the camera follow anchor, placed at anchor + offset.
func (c *Camera) Attach(anchor physics.Positioned, offset physics.Vec3) {
	c.anchor = anchor
	c.offset = offset
}

func (c *Camera) Position() physics.Vec3 {
	if c.anchor != nil {
		return c.anchor.Position().Add(c.offset)
	}
	return c.position
}

func (c *Camera) SetPosition(p physics.Vec3) {
	c.anchor = nil
	c.position = p
}

func (c *Camera) Rotation() physics.Quat     { return c.rotation }
func (c *Camera) SetRotation(q physics.Quat) { c.rotation = q.Normalize() }

// LookAt turns the camera towards target.
func (c *Camera) LookAt(target physics.Vec3) {
	dir := physics.Direction(c.Position(), target)
	if dir == physics.Zero {
		return
	}
	c.rotation = mgl64.QuatBetweenVectors(physics.Forward, dir)
}

func (c *Camera) Forward() physics.Vec3 {
	return physics.Transform{Rotation: c.rotation}.Forward()
}

// ViewportRay returns the world ray through viewport point (x, y), where
// (0,0) is bottom left and (1,1) top right.
func (c *Camera) ViewportRay(x, y float64) physics.Ray {
	tanHalf := math.Tan(mgl64.DegToRad(c.FOV) / 2)
	local := physics.Vec3{
		(2*x - 1) * tanHalf * c.Aspect,
		(2*y - 1) * tanHalf,
		1,
	}
	dir := physics.Transform{Rotation: c.rotation}.TransformDirection(local)
	return physics.NewRay(c.Position(), dir)
}
