package telekinesis

import (
	"fmt"
	"image/color"
	"math"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
	"github.com/zeusync/kinetix/pkg/generic"
)

// State is what the controller did on the last physics step.
type State uint8

const (
	Idle State = iota
	Pushing
	Pulling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pushing:
		return "pushing"
	case Pulling:
		return "pulling"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Cursor colours.
var (
	ColorNoTarget    = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	ColorOutOfRange  = color.RGBA{R: 255, G: 153, B: 0, A: 255}
	ColorValidTarget = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorActive      = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Target is a body picked by the detection ray.
type Target struct {
	Body   physics.Body
	Entity physics.Entity
	// HitPoint is where the ray hit, in world space.
	HitPoint physics.Vec3
	// OutsideRange is true when HitPoint is farther than the configured
	// range from the base.
	OutsideRange bool
}

// Controller selects rigid bodies through the centre of the camera view
// and pushes or pulls them while a button is held.
//
// Detection runs every frame (Update) and application every physics step
// (FixedUpdate). Only non-kinematic bodies within range are affected.
type Controller struct {
	name      string
	base      physics.Positioned
	camera    physics.Camera
	raycaster physics.Raycaster
	input     Input
	cfg       Config
	logger    log.Log
	events    bus.Publisher

	target generic.Optional[Target]
	state  State
}

var (
	_ systems.Updater      = (*Controller)(nil)
	_ systems.FixedUpdater = (*Controller)(nil)
)

type Option func(*Controller)

func WithLogger(l log.Log) Option {
	return func(c *Controller) { c.logger = l }
}

func WithEvents(p bus.Publisher) Option {
	return func(c *Controller) { c.events = p }
}

func New(name string, base physics.Positioned, camera physics.Camera, raycaster physics.Raycaster, input Input, cfg Config, opts ...Option) (*Controller, error) {
	if base == nil || camera == nil || raycaster == nil || input == nil {
		return nil, ErrNilDependency
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("telekinesis %s: %w", name, err)
	}
	c := &Controller{
		name:      name,
		base:      base,
		camera:    camera,
		raycaster: raycaster,
		input:     input,
		cfg:       cfg,
		logger:    log.Nop(),
		events:    bus.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Name() string               { return "telekinesis:" + c.name }
func (c *Controller) Priority() systems.Priority { return systems.PriorityNormal }

func (c *Controller) Update(float64) error {
	c.Detect()
	return nil
}

func (c *Controller) FixedUpdate(float64) error {
	c.Apply()
	return nil
}

// Detect casts the targeting ray and replaces the current target.
func (c *Controller) Detect() {
	ray := c.camera.ViewportRay(0.5, 0.5)
	hit, ok := c.raycaster.Raycast(ray, math.Inf(1), c.cfg.DetectionMask)
	if !ok || hit.Body == nil || hit.Body.IsKinematic() {
		c.ClearTarget()
		return
	}
	c.setTarget(Target{
		Body:         hit.Body,
		Entity:       hit.Entity,
		HitPoint:     hit.Point,
		OutsideRange: physics.Distance(c.base.Position(), hit.Point) > c.cfg.Range,
	})
}

// Apply pushes or pulls the in-range target according to the held input.
// Pull wins when both buttons are held.
func (c *Controller) Apply() {
	t, ok := c.target.Get()
	if !ok || t.OutsideRange {
		c.setState(Idle)
		return
	}
	base := c.base.Position()
	switch {
	case c.input.PullHeld():
		t.Body.AddForce(physics.Direction(t.HitPoint, base).Mul(c.cfg.PullForce), physics.ModeAcceleration)
		c.setState(Pulling)
	case c.input.PushHeld():
		t.Body.AddForce(physics.Direction(base, t.HitPoint).Mul(c.cfg.PushForce), physics.ModeAcceleration)
		c.setState(Pushing)
	default:
		c.setState(Idle)
	}
}

// ClearTarget drops the current target, if any.
func (c *Controller) ClearTarget() {
	prev, ok := c.target.Get()
	if !ok {
		return
	}
	c.target = generic.None[Target]()
	c.logger.Debug("telekinesis target lost",
		log.String("controller", c.name),
		log.String("target", entityName(prev.Entity)))
	_ = c.events.Publish(bus.NewEvent(EventTargetChanged, c.name, TargetChanged{Controller: c.name}))
}

func (c *Controller) setTarget(t Target) {
	prev, had := c.target.Get()
	c.target = generic.Some(t)
	if had && prev.Body == t.Body && prev.OutsideRange == t.OutsideRange {
		return
	}
	c.logger.Debug("telekinesis target acquired",
		log.String("controller", c.name),
		log.String("target", entityName(t.Entity)),
		log.Vec3("hit", t.HitPoint),
		log.Bool("outside_range", t.OutsideRange))
	_ = c.events.Publish(bus.NewEvent(EventTargetChanged, c.name, TargetChanged{
		Controller:   c.name,
		Target:       entityName(t.Entity),
		HitPoint:     t.HitPoint,
		OutsideRange: t.OutsideRange,
	}))
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	c.logger.Debug("telekinesis state changed",
		log.String("controller", c.name),
		log.String("from", from.String()),
		log.String("to", s.String()))
	_ = c.events.Publish(bus.NewEvent(EventStateChanged, c.name, StateChanged{Controller: c.name, From: from, To: s}))
}

func (c *Controller) State() State                     { return c.state }
func (c *Controller) Target() generic.Optional[Target] { return c.target }
func (c *Controller) Config() Config                   { return c.cfg }

// CursorColor reflects the targeting state: gray without a target, orange
// for a target out of range, white for a valid target and green while
// pushing or pulling.
func (c *Controller) CursorColor() color.RGBA {
	if c.state != Idle {
		return ColorActive
	}
	t, ok := c.target.Get()
	switch {
	case !ok:
		return ColorNoTarget
	case t.OutsideRange:
		return ColorOutOfRange
	default:
		return ColorValidTarget
	}
}

// DrawCursor draws a 2x2 marker in the cursor colour at the centre of d.
func (c *Controller) DrawCursor(d Display) {
	if d == nil {
		return
	}
	w, h := d.Size()
	d.DrawMarker(w/2, h/2, 2, 2, c.CursorColor())
}

func entityName(e physics.Entity) string {
	if e == nil {
		return ""
	}
	return e.Name()
}
