package sandbox

import (
	"fmt"
	"math"

	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

func (k ShapeKind) String() string {
	if k == ShapeBox {
		return "box"
	}
	return "sphere"
}

// Shape is an axis-aligned collider centred on its object. Rotation is not
// taken into account for overlaps or raycasts.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents physics.Vec3
}

func Sphere(radius float64) Shape { return Shape{Kind: ShapeSphere, Radius: radius} }

// Box builds a box from its full size.
func Box(size physics.Vec3) Shape { return Shape{Kind: ShapeBox, HalfExtents: size.Mul(0.5)} }

func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeSphere:
		if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
			return fmt.Errorf("%w: sphere radius must be positive, got %v", ErrInvalidShape, s.Radius)
		}
	case ShapeBox:
		for _, c := range s.HalfExtents {
			if !(c > 0) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: box size must be positive, got %v", ErrInvalidShape, s.HalfExtents.Mul(2))
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidShape, s.Kind)
	}
	return nil
}

// contains reports whether p lies inside the shape placed at center.
func (s Shape) contains(center, p physics.Vec3) bool {
	d := p.Sub(center)
	if s.Kind == ShapeSphere {
		return d.Len() < s.Radius
	}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) >= s.HalfExtents[i] {
			return false
		}
	}
	return true
}

// overlaps tests two placed shapes. Touching counts as overlapping.
func overlaps(a Shape, pa physics.Vec3, b Shape, pb physics.Vec3) bool {
	switch {
	case a.Kind == ShapeSphere && b.Kind == ShapeSphere:
		return physics.Distance(pa, pb) <= a.Radius+b.Radius
	case a.Kind == ShapeBox && b.Kind == ShapeBox:
		for i := 0; i < 3; i++ {
			if math.Abs(pa[i]-pb[i]) > a.HalfExtents[i]+b.HalfExtents[i] {
				return false
			}
		}
		return true
	case a.Kind == ShapeSphere:
		return sphereBox(pa, a.Radius, pb, b.HalfExtents)
	default:
		return sphereBox(pb, b.Radius, pa, a.HalfExtents)
	}
}

func sphereBox(center physics.Vec3, radius float64, boxCenter, half physics.Vec3) bool {
	var closest physics.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = math.Max(boxCenter[i]-half[i], math.Min(center[i], boxCenter[i]+half[i]))
	}
	return physics.Distance(center, closest) <= radius
}

// intersect returns the distance along r to the first surface point of the
// shape placed at center.
func (s Shape) intersect(r physics.Ray, center physics.Vec3) (float64, bool) {
	if s.Kind == ShapeSphere {
		return raySphere(r, center, s.Radius)
	}
	return rayBox(r, center.Sub(s.HalfExtents), center.Add(s.HalfExtents))
}

func raySphere(r physics.Ray, center physics.Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// rayBox is the slab method.
func rayBox(r physics.Ray, lo, hi physics.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(r.Dir[i]) < physics.Epsilon {
			if r.Origin[i] < lo[i] || r.Origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[i]
		t1 := (lo[i] - r.Origin[i]) * inv
		t2 := (hi[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
