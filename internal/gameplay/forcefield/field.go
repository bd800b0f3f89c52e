package forcefield

import (
	"fmt"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// EventApplied is published every time the field pushes something.
const EventApplied = "forcefield.applied"

// Applied is the payload of EventApplied.
type Applied struct {
	Field  string
	Target string
	Force  physics.Vec3
	Mode   physics.ForceMode
	Player bool
}

// Field applies a configured force to whatever overlaps its trigger.
//
// Instant modes (impulse, velocity change) fire once when the overlap
// begins; continuous modes (force, acceleration) fire on every physics step
// the overlap persists. Players receive the force as a velocity delta,
// scaled by the step for continuous modes. Rigid bodies receive it through
// AddForce with the configured mode.
type Field struct {
	name        string
	orientation physics.Oriented
	cfg         Config
	logger      log.Log
	events      bus.Publisher
}

var _ physics.ContactListener = (*Field)(nil)

type Option func(*Field)

func WithLogger(l log.Log) Option {
	return func(f *Field) { f.logger = l }
}

func WithEvents(p bus.Publisher) Option {
	return func(f *Field) { f.events = p }
}

// New builds a field. orientation is only consulted for local space
// forces and may be nil for world space ones.
func New(name string, orientation physics.Oriented, cfg Config, opts ...Option) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("force field %s: %w", name, err)
	}
	if cfg.Space == physics.SpaceLocal && orientation == nil {
		return nil, fmt.Errorf("force field %s: local space needs an orientation: %w", name, ErrNilDependency)
	}
	f := &Field{
		name:        name,
		orientation: orientation,
		cfg:         cfg,
		logger:      log.Nop(),
		events:      bus.Discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Field) Name() string   { return f.name }
func (f *Field) Config() Config { return f.cfg }

// ForceInWorldSpace returns the configured force, rotated by the field's
// current orientation when it is expressed in local space.
func (f *Field) ForceInWorldSpace() physics.Vec3 {
	if f.cfg.Space == physics.SpaceWorld {
		return f.cfg.Force
	}
	t := physics.Transform{Rotation: f.orientation.Rotation()}
	return t.TransformDirection(f.cfg.Force)
}

func (f *Field) OnContactBegin(c physics.Contact) {
	if f.cfg.Mode.IsInstant() {
		f.touch(c)
	}
}

func (f *Field) OnContactPersist(c physics.Contact) {
	if f.cfg.Mode.IsContinuous() {
		f.touch(c)
	}
}

func (f *Field) OnContactEnd(physics.Contact) {}

func (f *Field) touch(c physics.Contact) {
	force := f.ForceInWorldSpace()

	if f.cfg.AffectsPlayer {
		if player, ok := physics.Capability[physics.Player](c.Other); ok {
			delta := force
			if f.cfg.Mode.IsContinuous() {
				delta = force.Mul(c.DeltaTime)
			}
			player.AddVelocity(delta)
			f.publish(c.Other, delta, true)
		}
	}

	if f.cfg.AffectsRigidbodies {
		if body, ok := physics.Capability[physics.Body](c.Other); ok {
			body.AddForce(force, f.cfg.Mode)
			f.publish(c.Other, force, false)
		}
	}
}

func (f *Field) publish(target physics.Entity, force physics.Vec3, player bool) {
	if f.cfg.Mode.IsInstant() {
		f.logger.Debug("force field fired",
			log.String("field", f.name),
			log.String("target", target.Name()),
			log.String("mode", f.cfg.Mode.String()),
			log.Vec3("force", force))
	}
	_ = f.events.Publish(bus.NewEvent(EventApplied, f.name, Applied{
		Field: f.name, Target: target.Name(), Force: force, Mode: f.cfg.Mode, Player: player,
	}))
}
