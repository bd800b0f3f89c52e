package platform

import (
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
	"github.com/zeusync/kinetix/pkg/generic"
)

// RiderTracker moves a rider by the displacement of the surface it is
// standing on, once per physics step.
//
// The surface position is sampled every step while a surface is assigned.
// No displacement is applied on the first step after a surface is
// acquired, so a rider never jumps by the distance between an old sample
// and a new surface.
type RiderTracker struct {
	name  string
	rider physics.Movable

	surface             generic.Optional[*Surface]
	lastSurfacePosition physics.Vec3
	hasSample           bool
}

var (
	_ systems.System       = (*RiderTracker)(nil)
	_ systems.FixedUpdater = (*RiderTracker)(nil)
)

func NewRiderTracker(name string, rider physics.Movable) (*RiderTracker, error) {
	if rider == nil {
		return nil, ErrNilDependency
	}
	return &RiderTracker{name: name, rider: rider}, nil
}

func (r *RiderTracker) Name() string               { return "rider:" + r.name }
func (r *RiderTracker) Priority() systems.Priority { return systems.PriorityNormal }

// SetSurface points the tracker at s. A nil surface clears it. Assigning a
// different surface than the current one discards the previous sample.
func (r *RiderTracker) SetSurface(s *Surface) {
	if s == nil {
		r.ClearSurface()
		return
	}
	if cur, ok := r.surface.Get(); ok && cur != s {
		r.hasSample = false
	}
	r.surface = generic.Some(s)
}

// ClearSurface detaches the rider. The next surface starts without a sample.
func (r *RiderTracker) ClearSurface() {
	r.surface = generic.None[*Surface]()
	r.hasSample = false
}

// Surface returns the surface currently carrying the rider.
func (r *RiderTracker) Surface() (*Surface, bool) { return r.surface.Get() }

// HasSample reports whether a surface position has been sampled since the
// surface was acquired.
func (r *RiderTracker) HasSample() bool { return r.hasSample }

func (r *RiderTracker) FixedUpdate(float64) error {
	s, ok := r.surface.Get()
	if !ok {
		r.hasSample = false
		return nil
	}

	pos := s.Position()
	if r.hasSample {
		if delta := pos.Sub(r.lastSurfacePosition); delta != physics.Zero {
			r.rider.SetPosition(r.rider.Position().Add(delta))
		}
	}
	r.lastSurfacePosition = pos
	r.hasSample = true
	return nil
}
