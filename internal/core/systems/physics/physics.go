package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector math is mgl64 throughout; these helpers cover the cases where
// mgl64 would produce NaN (normalizing a zero vector).

// Vec3 is a world or local space 3D vector.
type Vec3 = mgl64.Vec3

// Quat is an orientation.
type Quat = mgl64.Quat

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

var (
	Zero    = Vec3{}
	Forward = Vec3{0, 0, 1}
	Up      = Vec3{0, 1, 0}
	Right   = Vec3{1, 0, 0}
)

// Identity returns the identity orientation.
func Identity() Quat { return mgl64.QuatIdent() }

// Distance computes the Euclidean distance between two points.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than Epsilon.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Zero
	}
	return v.Mul(1 / l)
}

// Direction returns the unit vector pointing from a to b.
func Direction(from, to Vec3) Vec3 { return Normalize(to.Sub(from)) }

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Ray is a half line in world space. Dir is unit length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay builds a ray, normalizing dir.
func NewRay(origin, dir Vec3) Ray { return Ray{Origin: origin, Dir: Normalize(dir)} }

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Mul(t)) }

// Transform is a position and orientation in world space.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// NewTransform returns a transform at pos with identity rotation.
func NewTransform(pos Vec3) Transform {
	return Transform{Position: pos, Rotation: Identity()}
}

// TransformDirection rotates a local space direction into world space.
// Scale and translation are not applied.
func (t Transform) TransformDirection(local Vec3) Vec3 {
	if t.Rotation == (Quat{}) {
		return local
	}
	return t.Rotation.Normalize().Rotate(local)
}

// Forward returns the world space forward axis of the transform.
func (t Transform) Forward() Vec3 { return t.TransformDirection(Forward) }
