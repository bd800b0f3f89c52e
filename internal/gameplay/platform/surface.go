package platform

import (
	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// Surface is a moving platform that carries riders by overlap. When a
// collider carrying a *RiderTracker starts overlapping the surface's
// trigger, the tracker is pointed at this surface; when the overlap ends
// the tracker is cleared.
//
// Overlapping several surfaces at once is last-writer-wins: the most
// recent enter sets the surface, and an exit from any surface clears it.
type Surface struct {
	name      string
	transform physics.Positioned
	logger    log.Log
	events    bus.Publisher
}

var _ physics.ContactListener = (*Surface)(nil)

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

func WithSurfaceLogger(l log.Log) SurfaceOption {
	return func(s *Surface) { s.logger = l }
}

func WithSurfaceEvents(p bus.Publisher) SurfaceOption {
	return func(s *Surface) { s.events = p }
}

func NewSurface(name string, transform physics.Positioned, opts ...SurfaceOption) (*Surface, error) {
	if transform == nil {
		return nil, ErrNilDependency
	}
	s := &Surface{name: name, transform: transform, logger: log.Nop(), events: bus.Discard}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Surface) Name() string { return s.name }

// Position is the current world position of the surface.
func (s *Surface) Position() physics.Vec3 { return s.transform.Position() }

func (s *Surface) OnContactBegin(c physics.Contact) {
	tracker, ok := physics.Capability[*RiderTracker](c.Other)
	if !ok {
		return
	}
	tracker.SetSurface(s)
	s.logger.Debug("rider entered surface",
		log.String("surface", s.name),
		log.String("rider", c.Other.Name()))
	_ = s.events.Publish(bus.NewEvent(EventSurfaceEntered, s.name, SurfaceContact{Surface: s.name, Rider: c.Other.Name()}))
}

func (s *Surface) OnContactPersist(physics.Contact) {}

func (s *Surface) OnContactEnd(c physics.Contact) {
	tracker, ok := physics.Capability[*RiderTracker](c.Other)
	if !ok {
		return
	}
	tracker.ClearSurface()
	s.logger.Debug("rider left surface",
		log.String("surface", s.name),
		log.String("rider", c.Other.Name()))
	_ = s.events.Publish(bus.NewEvent(EventSurfaceExited, s.name, SurfaceContact{Surface: s.name, Rider: c.Other.Name()}))
}
