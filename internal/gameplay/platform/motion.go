package platform

import (
	"context"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// MotionState is the phase of an oscillating platform.
type MotionState uint8

const (
	Stationary MotionState = iota
	MovingToTarget
	MovingToInitial
)

func (s MotionState) String() string {
	switch s {
	case Stationary:
		return "stationary"
	case MovingToTarget:
		return "moving_to_target"
	case MovingToInitial:
		return "moving_to_initial"
	}
	return fmt.Sprintf("MotionState(%d)", uint8(s))
}

// Scheduler runs a callback once after a delay in seconds.
type Scheduler interface {
	After(delay float64, fn func()) *systems.Task
}

// MotionConfig describes the oscillation of a platform.
type MotionConfig struct {
	// Target is the world position the platform travels to.
	Target physics.Vec3 `yaml:"target"`
	// TimeToChangePosition is the travel time in seconds for one leg.
	TimeToChangePosition float64 `yaml:"time_to_change_position"`
	// StationaryTime is the dwell in seconds at each endpoint.
	StationaryTime float64 `yaml:"stationary_time"`
}

// DefaultMotionConfig returns a three second leg with a one second dwell.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{TimeToChangePosition: 3, StationaryTime: 1}
}

// UnmarshalYAML decodes over DefaultMotionConfig() so omitted keys keep their defaults.
func (c *MotionConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain MotionConfig
	out := plain(DefaultMotionConfig())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*c = MotionConfig(out)
	return nil
}

func (c MotionConfig) Validate() error {
	if !(c.TimeToChangePosition > 0) || math.IsInf(c.TimeToChangePosition, 0) {
		return fmt.Errorf("%w: time_to_change_position must be a positive number, got %v",
			ErrInvalidConfig, c.TimeToChangePosition)
	}
	if c.StationaryTime < 0 || math.IsNaN(c.StationaryTime) {
		return fmt.Errorf("%w: stationary_time must not be negative, got %v",
			ErrInvalidConfig, c.StationaryTime)
	}
	if !physics.IsFinite(c.Target) {
		return fmt.Errorf("%w: target must be finite", ErrInvalidConfig)
	}
	return nil
}

// Motion drives a body back and forth between its start position and a
// target at constant speed, pausing at each end.
//
// The body is moved through its velocity so it still interacts physically
// with riders and obstacles. On the step that would reach or pass the
// destination the body is snapped exactly onto it.
type Motion struct {
	name      string
	body      physics.Body
	scheduler Scheduler
	cfg       MotionConfig
	logger    log.Log
	events    bus.Publisher

	initial physics.Vec3
	state   MotionState
	next    MotionState
	pending *systems.Task
	started bool
}

var (
	_ systems.System       = (*Motion)(nil)
	_ systems.Starter      = (*Motion)(nil)
	_ systems.FixedUpdater = (*Motion)(nil)
	_ systems.Destroyer    = (*Motion)(nil)
)

// MotionOption configures a Motion.
type MotionOption func(*Motion)

func WithMotionLogger(l log.Log) MotionOption {
	return func(m *Motion) { m.logger = l }
}

func WithMotionEvents(p bus.Publisher) MotionOption {
	return func(m *Motion) { m.events = p }
}

// NewMotion validates cfg and builds an unstarted Motion.
func NewMotion(name string, body physics.Body, scheduler Scheduler, cfg MotionConfig, opts ...MotionOption) (*Motion, error) {
	if body == nil || scheduler == nil {
		return nil, ErrNilDependency
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("platform %s: %w", name, err)
	}
	m := &Motion{
		name:      name,
		body:      body,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    log.Nop(),
		events:    bus.Discard,
		state:     Stationary,
		next:      MovingToTarget,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Motion) Name() string               { return "platform:" + m.name }
func (m *Motion) Priority() systems.Priority { return systems.PriorityHigh }

// Start records the initial position and schedules the first departure.
func (m *Motion) Start(context.Context) error {
	m.initial = m.body.Position()
	m.state = Stationary
	m.next = MovingToTarget
	m.started = true
	m.scheduleDeparture()
	return nil
}

func (m *Motion) FixedUpdate(dt float64) error {
	if !m.started {
		return nil
	}
	if m.state == Stationary {
		m.body.SetVelocity(physics.Zero)
		return nil
	}

	dest := m.Destination()
	pos := m.body.Position()
	velocity := physics.Direction(pos, dest).Mul(m.TravelSpeed())
	m.body.SetVelocity(velocity)

	if velocity.Len()*dt >= physics.Distance(pos, dest) {
		m.body.SetVelocity(physics.Zero)
		m.body.SetPosition(dest)
		if m.state == MovingToInitial {
			m.next = MovingToTarget
		} else {
			m.next = MovingToInitial
		}
		m.setState(Stationary)
		m.scheduleDeparture()
	}
	return nil
}

// Destroy cancels the pending departure. The platform stays where it is.
func (m *Motion) Destroy() error {
	m.pending.Cancel()
	m.pending = nil
	m.started = false
	m.body.SetVelocity(physics.Zero)
	return nil
}

// Reset puts the platform back at its initial position and restarts the
// cycle with a dwell.
func (m *Motion) Reset() {
	if !m.started {
		return
	}
	m.pending.Cancel()
	m.body.SetPosition(m.initial)
	m.body.SetVelocity(physics.Zero)
	m.next = MovingToTarget
	m.setState(Stationary)
	m.scheduleDeparture()
}

// TravelSpeed is the distance between the endpoints divided by the leg time.
func (m *Motion) TravelSpeed() float64 {
	return physics.Distance(m.initial, m.cfg.Target) / m.cfg.TimeToChangePosition
}

// Destination is the endpoint of the current leg; the target while
// stationary.
func (m *Motion) Destination() physics.Vec3 {
	if m.state == MovingToInitial {
		return m.initial
	}
	return m.cfg.Target
}

func (m *Motion) State() MotionState              { return m.state }
func (m *Motion) NextState() MotionState          { return m.next }
func (m *Motion) InitialPosition() physics.Vec3   { return m.initial }
func (m *Motion) TargetPosition() physics.Vec3    { return m.cfg.Target }
func (m *Motion) PendingDeparture() *systems.Task { return m.pending }

func (m *Motion) scheduleDeparture() {
	m.pending.Cancel()
	m.pending = m.scheduler.After(m.cfg.StationaryTime, m.depart)
}

func (m *Motion) depart() {
	m.pending = nil
	if !m.started {
		return
	}
	m.setState(m.next)
}

func (m *Motion) setState(s MotionState) {
	if s == m.state {
		return
	}
	from := m.state
	m.state = s
	pos := m.body.Position()
	m.logger.Debug("platform state changed",
		log.String("platform", m.name),
		log.String("from", from.String()),
		log.String("to", s.String()),
		log.Vec3("position", pos))
	_ = m.events.Publish(bus.NewEvent(EventMotionState, m.name, MotionStateChanged{
		Platform: m.name, From: from, To: s, Position: pos,
	}))
}
