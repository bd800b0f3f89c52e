package sandbox

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// Event types published by the world.
const (
	EventContactBegin = "sandbox.contact_begin"
	EventContactEnd   = "sandbox.contact_end"
)

// ContactEvent is the payload of the contact events. A and B are object
// names in world insertion order.
type ContactEvent struct {
	A, B string
}

// DefaultGravity points down the Y axis.
var DefaultGravity = physics.Vec3{0, -9.81, 0}

// World is a minimal rigid body engine: it integrates velocities, tracks
// trigger overlaps and answers raycasts. There is no collision response.
//
// World runs as the lowest priority system so every gameplay FixedUpdate
// of a step sees positions from the previous step and its queued forces
// are integrated in the same step.
type World struct {
	gravity      physics.Vec3
	hitsTriggers bool
	logger       log.Log
	events       bus.Publisher

	objects []*Object
	index   map[uuid.UUID]*Object

	contacts map[pairKey]struct{}
	order    []pairKey

	steps uint64
}

var (
	_ systems.System       = (*World)(nil)
	_ systems.FixedUpdater = (*World)(nil)
	_ physics.Raycaster    = (*World)(nil)
)

type pairKey struct{ a, b uuid.UUID }

type WorldOption func(*World)

func WithGravity(g physics.Vec3) WorldOption {
	return func(w *World) { w.gravity = g }
}

func WithLogger(l log.Log) WorldOption {
	return func(w *World) { w.logger = l }
}

func WithEvents(p bus.Publisher) WorldOption {
	return func(w *World) { w.events = p }
}

// WithRaycastHitsTriggers makes raycasts report trigger colliders too.
func WithRaycastHitsTriggers(v bool) WorldOption {
	return func(w *World) { w.hitsTriggers = v }
}

func NewWorld(opts ...WorldOption) *World {
	w := &World{
		gravity:  DefaultGravity,
		logger:   log.Nop(),
		events:   bus.Discard,
		index:    make(map[uuid.UUID]*Object),
		contacts: make(map[pairKey]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Name() string               { return "physics" }
func (w *World) Priority() systems.Priority { return systems.PriorityLowest }

func (w *World) Add(o *Object) error {
	if o == nil {
		return ErrInvalidObject
	}
	if _, ok := w.index[o.id]; ok {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateObject, o.name, o.id)
	}
	w.objects = append(w.objects, o)
	w.index[o.id] = o
	w.logger.Debug("object added",
		log.String("name", o.name),
		log.String("id", o.id.String()),
		log.String("shape", o.shape.Kind.String()))
	return nil
}

// Remove takes the object out of the world, ending its open contacts.
func (w *World) Remove(id uuid.UUID) error {
	o, ok := w.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	kept := w.order[:0]
	for _, k := range w.order {
		if k.a == id || k.b == id {
			delete(w.contacts, k)
			w.dispatchEnd(k, 0)
			continue
		}
		kept = append(kept, k)
	}
	w.order = kept
	for i, obj := range w.objects {
		if obj == o {
			w.objects = append(w.objects[:i], w.objects[i+1:]...)
			break
		}
	}
	delete(w.index, id)
	return nil
}

func (w *World) Object(id uuid.UUID) (*Object, bool) {
	o, ok := w.index[id]
	return o, ok
}

// Find returns the first object with the given name.
func (w *World) Find(name string) (*Object, bool) {
	for _, o := range w.objects {
		if o.name == name {
			return o, true
		}
	}
	return nil, false
}

// Objects returns the objects in insertion order. The slice is a copy.
func (w *World) Objects() []*Object {
	out := make([]*Object, len(w.objects))
	copy(out, w.objects)
	return out
}

func (w *World) Steps() uint64 { return w.steps }

// ContactCount is the number of overlaps currently open.
func (w *World) ContactCount() int { return len(w.order) }

// FixedUpdate integrates every object, then delivers contact notifications
// for the new positions: end for pairs that separated, persist for pairs
// that were already open and begin for new ones.
func (w *World) FixedUpdate(dt float64) error {
	for _, o := range w.objects {
		o.integrate(dt, w.gravity)
	}
	w.steps++

	current := make(map[pairKey]struct{})
	var fresh []pairKey
	for i := 0; i < len(w.objects); i++ {
		a := w.objects[i]
		for j := i + 1; j < len(w.objects); j++ {
			b := w.objects[j]
			if !a.trigger && !b.trigger {
				continue
			}
			if !overlaps(a.shape, a.position, b.shape, b.position) {
				continue
			}
			k := pairKey{a: a.id, b: b.id}
			current[k] = struct{}{}
			if _, open := w.contacts[k]; !open {
				fresh = append(fresh, k)
			}
		}
	}

	kept := w.order[:0]
	var ended []pairKey
	for _, k := range w.order {
		if _, ok := current[k]; ok {
			kept = append(kept, k)
			continue
		}
		delete(w.contacts, k)
		ended = append(ended, k)
	}
	w.order = kept

	for _, k := range ended {
		w.dispatchEnd(k, dt)
	}
	for _, k := range w.order {
		w.dispatch(k, dt, physics.ContactListener.OnContactPersist)
	}
	for _, k := range fresh {
		w.contacts[k] = struct{}{}
		w.order = append(w.order, k)
		w.dispatch(k, dt, physics.ContactListener.OnContactBegin)
		w.publish(EventContactBegin, k)
	}
	return nil
}

func (w *World) dispatchEnd(k pairKey, dt float64) {
	w.dispatch(k, dt, physics.ContactListener.OnContactEnd)
	w.publish(EventContactEnd, k)
}

// dispatch notifies the listeners on both sides of a pair, each with the
// other object as Contact.Other.
func (w *World) dispatch(k pairKey, dt float64, fn func(physics.ContactListener, physics.Contact)) {
	a, b := w.index[k.a], w.index[k.b]
	if a == nil || b == nil {
		return
	}
	notify := func(self, other *Object) {
		for _, c := range self.caps {
			if l, ok := c.(physics.ContactListener); ok {
				fn(l, physics.Contact{Other: other, DeltaTime: dt})
			}
		}
	}
	notify(a, b)
	notify(b, a)
}

func (w *World) publish(typ string, k pairKey) {
	a, b := w.index[k.a], w.index[k.b]
	if a == nil || b == nil {
		return
	}
	if err := w.events.Publish(bus.NewEvent(typ, "physics", ContactEvent{A: a.name, B: b.name})); err != nil {
		w.logger.Warn("contact event handler failed", log.String("type", typ), log.Error(err))
	}
}

// Raycast returns the nearest object hit along ray within maxDistance whose
// layer is in mask. Objects containing the ray origin are skipped, so a
// camera inside its own player collider sees past it.
func (w *World) Raycast(ray physics.Ray, maxDistance float64, mask physics.LayerMask) (physics.Hit, bool) {
	if ray.Dir == physics.Zero || math.IsNaN(maxDistance) {
		return physics.Hit{}, false
	}
	var (
		best  physics.Hit
		found bool
	)
	for _, o := range w.objects {
		if !mask.Contains(o.layer) || (o.trigger && !w.hitsTriggers) {
			continue
		}
		if o.shape.contains(o.position, ray.Origin) {
			continue
		}
		t, ok := o.shape.intersect(ray, o.position)
		if !ok || t > maxDistance || (found && t >= best.Distance) {
			continue
		}
		best = physics.Hit{Point: ray.At(t), Distance: t, Entity: o}
		if rb, ok := physics.Capability[physics.Body](o); ok {
			best.Body = rb
		}
		found = true
	}
	return best, found
}
