package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
	"github.com/zeusync/kinetix/internal/gameplay/forcefield"
	"github.com/zeusync/kinetix/internal/gameplay/platform"
	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
	"github.com/zeusync/kinetix/internal/sandbox"
)

// Runtime is a built scene: the sandbox world, the gameplay components
// and the manager driving them.
type Runtime struct {
	Config    Config
	Logger    log.Log
	Events    bus.EventBus
	Manager   *systems.Manager
	Scheduler *systems.Scheduler
	World     *sandbox.World
	Camera    *sandbox.Camera
	Input     telekinesis.Input
	// Telekinesis is nil when the scene has no telekinesis section.
	Telekinesis *telekinesis.Controller

	Motions  []*platform.Motion
	Surfaces []*platform.Surface
	Riders   []*platform.RiderTracker
	Fields   []*forcefield.Field
}

type BuildOption func(*buildOptions)

type buildOptions struct {
	input  telekinesis.Input
	events bus.EventBus
}

// WithInput replaces the scripted input of the scene.
func WithInput(in telekinesis.Input) BuildOption {
	return func(o *buildOptions) { o.input = in }
}

// WithEventBus makes the runtime publish on b instead of a private bus.
func WithEventBus(b bus.EventBus) BuildOption {
	return func(o *buildOptions) { o.events = b }
}

// ObjectID derives a stable object id from the scene and object names, so
// repeated runs of a scene produce identical snapshots.
func ObjectID(sceneName, objectName string) uuid.UUID {
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte("kinetix:scene:"+sceneName))
	return uuid.NewSHA1(ns, []byte(objectName))
}

// Build validates cfg and assembles its runtime. The runtime is not started.
func Build(cfg Config, logger log.Log, opts ...BuildOption) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.events == nil {
		o.events = bus.New()
	}

	manager, err := systems.NewManager(cfg.Time.FixedStep,
		systems.WithLogger(logger.Named("systems")),
		systems.WithMaxCatchUpSteps(cfg.Time.MaxCatchUpSteps))
	if err != nil {
		return nil, err
	}

	worldOpts := []sandbox.WorldOption{
		sandbox.WithLogger(logger.Named("physics")),
		sandbox.WithEvents(o.events),
		sandbox.WithRaycastHitsTriggers(cfg.World.RaycastHitsTriggers),
	}
	if cfg.World.Gravity != nil {
		worldOpts = append(worldOpts, sandbox.WithGravity(*cfg.World.Gravity))
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    logger,
		Events:    o.events,
		Manager:   manager,
		Scheduler: systems.NewScheduler(),
		World:     sandbox.NewWorld(worldOpts...),
	}
	rt.Input = o.input
	if rt.Input == nil {
		rt.Input = NewScriptedInput(cfg.Input, manager.SimTime)
	}

	systemsToRegister := []systems.System{rt.Scheduler, rt.World}
	for _, oc := range cfg.Objects {
		sys, err := rt.addObject(oc)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", oc.Name, err)
		}
		systemsToRegister = append(systemsToRegister, sys...)
	}

	rt.Camera = sandbox.NewCamera(cfg.Camera.Position, cfg.Camera.Rotation.Quat())
	rt.Camera.FOV = cfg.Camera.FOV
	rt.Camera.Aspect = cfg.Camera.Aspect
	if cfg.Camera.Attach != "" {
		anchor, _ := rt.World.Find(cfg.Camera.Attach)
		rt.Camera.Attach(anchor, cfg.Camera.Offset)
	}

	if tk := cfg.Telekinesis; tk != nil {
		base, _ := rt.World.Find(tk.Base)
		ctrl, err := telekinesis.New(tk.Base, base, rt.Camera, rt.World, rt.Input, tk.Controller,
			telekinesis.WithLogger(logger.Named("telekinesis")),
			telekinesis.WithEvents(o.events))
		if err != nil {
			return nil, err
		}
		rt.Telekinesis = ctrl
		systemsToRegister = append(systemsToRegister, ctrl)
	}

	for _, s := range systemsToRegister {
		if err := manager.Register(s); err != nil {
			return nil, err
		}
	}
	logger.Info("scene built",
		log.String("scene", cfg.Name),
		log.Int("objects", len(cfg.Objects)),
		log.Int("systems", len(systemsToRegister)))
	return rt, nil
}

func (rt *Runtime) addObject(oc ObjectConfig) ([]systems.System, error) {
	objCfg := sandbox.ObjectConfig{
		ID:       ObjectID(rt.Config.Name, oc.Name),
		Name:     oc.Name,
		Position: oc.Position,
		Rotation: oc.Rotation.Quat(),
		Velocity: oc.Velocity,
		Trigger:  oc.Trigger,
		Layer:    oc.Layer,
	}
	switch oc.Shape.Kind {
	case "box":
		objCfg.Shape = sandbox.Box(oc.Shape.Size)
	default:
		objCfg.Shape = sandbox.Sphere(oc.Shape.Radius)
	}
	if b := oc.Body; b != nil {
		objCfg.Mass = b.Mass
		objCfg.Drag = b.Drag
		objCfg.Kinematic = b.Kinematic
		objCfg.Gravity = b.Gravity
		if b.Layer != nil {
			objCfg.Layer = *b.Layer
		}
	}

	obj, err := sandbox.NewObject(objCfg)
	if err != nil {
		return nil, err
	}
	if err := rt.World.Add(obj); err != nil {
		return nil, err
	}

	var out []systems.System
	var body physics.Body
	if oc.Body != nil {
		body = obj.EnableBody()
	}
	if oc.Player {
		obj.EnablePlayer()
	}
	if oc.Surface {
		s, err := platform.NewSurface(oc.Name, obj,
			platform.WithSurfaceLogger(rt.Logger.Named("platform")),
			platform.WithSurfaceEvents(rt.Events))
		if err != nil {
			return nil, err
		}
		obj.AddCapability(s)
		rt.Surfaces = append(rt.Surfaces, s)
	}
	if oc.Rider {
		r, err := platform.NewRiderTracker(oc.Name, obj)
		if err != nil {
			return nil, err
		}
		obj.AddCapability(r)
		rt.Riders = append(rt.Riders, r)
		out = append(out, r)
	}
	if oc.Motion != nil {
		m, err := platform.NewMotion(oc.Name, body, rt.Scheduler, *oc.Motion,
			platform.WithMotionLogger(rt.Logger.Named("platform")),
			platform.WithMotionEvents(rt.Events))
		if err != nil {
			return nil, err
		}
		rt.Motions = append(rt.Motions, m)
		out = append(out, m)
	}
	if oc.ForceField != nil {
		f, err := forcefield.New(oc.Name, obj, *oc.ForceField,
			forcefield.WithLogger(rt.Logger.Named("forcefield")),
			forcefield.WithEvents(rt.Events))
		if err != nil {
			return nil, err
		}
		obj.AddCapability(f)
		rt.Fields = append(rt.Fields, f)
	}
	return out, nil
}

func (rt *Runtime) Start(ctx context.Context) error { return rt.Manager.Start(ctx) }

// Frame advances one frame at the configured frame rate.
func (rt *Runtime) Frame() error { return rt.Manager.Frame(rt.Config.Time.FrameDelta()) }

func (rt *Runtime) SimTime() float64 { return rt.Manager.SimTime() }

// Done reports whether the configured duration has been simulated. It is
// always false for scenes without a duration.
func (rt *Runtime) Done() bool {
	d := rt.Config.Time.Duration.Seconds()
	return d > 0 && rt.SimTime()+1e-9 >= d
}

// RunFrames runs n frames, stopping early on ctx cancellation.
func (rt *Runtime) RunFrames(ctx context.Context, n int) error {
	var errs []error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rt.Frame(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (rt *Runtime) Destroy() error { return rt.Manager.Destroy() }

// NewRuntime builds a runtime and returns a cleanup that destroys it. A nil
// input keeps the scene's scripted input.
func NewRuntime(cfg Config, logger log.Log, input telekinesis.Input) (*Runtime, func(), error) {
	rt, err := Build(cfg, logger, WithInput(input))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := rt.Destroy(); err != nil {
			rt.Logger.Warn("destroy runtime", log.Error(err))
		}
	}
	return rt, cleanup, nil
}
