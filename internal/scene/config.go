package scene

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
	"github.com/zeusync/kinetix/internal/gameplay/forcefield"
	"github.com/zeusync/kinetix/internal/gameplay/platform"
	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
)

// Config is a scene document.
type Config struct {
	Name        string             `yaml:"name"`
	Time        TimeConfig         `yaml:"time"`
	Log         log.Config         `yaml:"log"`
	World       WorldConfig        `yaml:"world"`
	Objects     []ObjectConfig     `yaml:"objects"`
	Camera      CameraConfig       `yaml:"camera"`
	Telekinesis *TelekinesisConfig `yaml:"telekinesis"`
	Input       []InputEvent       `yaml:"input"`
	Inspector   InspectorConfig    `yaml:"inspector"`
}

type TimeConfig struct {
	// FixedStep is the physics step in seconds.
	FixedStep float64 `yaml:"fixed_step"`
	// FrameRate is the number of rendered frames per second.
	FrameRate float64 `yaml:"frame_rate"`
	// Duration stops the run after this much simulated time; zero runs
	// until interrupted.
	Duration time.Duration `yaml:"duration"`
	// MaxCatchUpSteps bounds the fixed steps run for one long frame.
	MaxCatchUpSteps int `yaml:"max_catch_up_steps"`
}

// FrameDelta is the duration of one frame in seconds.
func (t TimeConfig) FrameDelta() float64 { return 1 / t.FrameRate }

type WorldConfig struct {
	Gravity             *physics.Vec3 `yaml:"gravity"`
	RaycastHitsTriggers bool          `yaml:"raycast_hits_triggers"`
}

type ShapeConfig struct {
	// Kind is "sphere" or "box".
	Kind   string       `yaml:"kind"`
	Radius float64      `yaml:"radius"`
	Size   physics.Vec3 `yaml:"size"`
}

// Euler is an orientation in degrees, applied yaw (about Y), then pitch
// (about X), then roll (about Z).
type Euler struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	Roll  float64 `yaml:"roll"`
}

func (e Euler) Quat() physics.Quat {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(e.Yaw), physics.Up)
	pitch := mgl64.QuatRotate(mgl64.DegToRad(e.Pitch), physics.Right)
	roll := mgl64.QuatRotate(mgl64.DegToRad(e.Roll), physics.Forward)
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// BodyConfig turns an object into a rigid body.
type BodyConfig struct {
	Mass      float64 `yaml:"mass"`
	Drag      float64 `yaml:"drag"`
	Kinematic bool    `yaml:"kinematic"`
	Gravity   bool    `yaml:"gravity"`
	// Layer overrides the object's layer when set.
	Layer *physics.Layer `yaml:"layer"`
}

type ObjectConfig struct {
	Name     string        `yaml:"name"`
	Shape    ShapeConfig   `yaml:"shape"`
	Position physics.Vec3  `yaml:"position"`
	Rotation Euler         `yaml:"rotation"`
	Velocity physics.Vec3  `yaml:"velocity"`
	Trigger  bool          `yaml:"trigger"`
	Layer    physics.Layer `yaml:"layer"`

	Body       *BodyConfig            `yaml:"body"`
	Player     bool                   `yaml:"player"`
	Surface    bool                   `yaml:"surface"`
	Rider      bool                   `yaml:"rider"`
	Motion     *platform.MotionConfig `yaml:"motion"`
	ForceField *forcefield.Config     `yaml:"force_field"`
}

type CameraConfig struct {
	// Attach names the object the camera follows; empty keeps it fixed at
	// Position.
	Attach   string       `yaml:"attach"`
	Offset   physics.Vec3 `yaml:"offset"`
	Position physics.Vec3 `yaml:"position"`
	Rotation Euler        `yaml:"rotation"`
	FOV      float64      `yaml:"fov"`
	Aspect   float64      `yaml:"aspect"`
}

// TelekinesisConfig is the controller configuration plus the name of the
// base object, all in one mapping.
type TelekinesisConfig struct {
	Base       string
	Controller telekinesis.Config
}

func (t *TelekinesisConfig) UnmarshalYAML(value *yaml.Node) error {
	var base struct {
		Base string `yaml:"base"`
	}
	if err := value.Decode(&base); err != nil {
		return err
	}
	if err := value.Decode(&t.Controller); err != nil {
		return err
	}
	t.Base = base.Base
	return nil
}

// InputEvent sets the held buttons from At seconds of simulated time on.
type InputEvent struct {
	At   float64 `yaml:"at"`
	Pull bool    `yaml:"pull"`
	Push bool    `yaml:"push"`
}

type InspectorConfig struct {
	// Addr enables the inspector HTTP server when set.
	Addr string `yaml:"addr"`
	// Every publishes a snapshot every this many fixed steps.
	Every int `yaml:"every"`
}

// Default returns a scene with no objects and the standard timing.
func Default() Config {
	return Config{
		Name: "scene",
		Time: TimeConfig{FixedStep: 0.02, FrameRate: 60, MaxCatchUpSteps: 8},
		Log:  log.Config{Level: "info", Encoding: "console"},
		Camera: CameraConfig{
			FOV:    60,
			Aspect: 16.0 / 9.0,
		},
		Inspector: InspectorConfig{Every: 5},
	}
}

// LoadYAML decodes a scene over Default and validates it.
func LoadYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode scene: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := LoadYAML(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !(c.Time.FixedStep > 0) || math.IsInf(c.Time.FixedStep, 0) {
		errs = append(errs, fmt.Errorf("%w: time.fixed_step must be positive", ErrInvalidConfig))
	}
	if !(c.Time.FrameRate > 0) || math.IsInf(c.Time.FrameRate, 0) {
		errs = append(errs, fmt.Errorf("%w: time.frame_rate must be positive", ErrInvalidConfig))
	}
	if c.Time.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: time.duration must not be negative", ErrInvalidConfig))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err))
	}

	names := make(map[string]ObjectConfig, len(c.Objects))
	for i, o := range c.Objects {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%w: objects[%d] has no name", ErrInvalidConfig, i))
			continue
		}
		if _, dup := names[o.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateName, o.Name))
			continue
		}
		names[o.Name] = o
		if err := o.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("objects[%d] %q: %w", i, o.Name, err))
		}
	}

	if c.Camera.Attach != "" {
		if _, ok := names[c.Camera.Attach]; !ok {
			errs = append(errs, fmt.Errorf("%w: camera.attach %q", ErrUnknownObject, c.Camera.Attach))
		}
	}
	if !(c.Camera.FOV > 0 && c.Camera.FOV < 180) {
		errs = append(errs, fmt.Errorf("%w: camera.fov must be in (0, 180)", ErrInvalidConfig))
	}
	if !(c.Camera.Aspect > 0) {
		errs = append(errs, fmt.Errorf("%w: camera.aspect must be positive", ErrInvalidConfig))
	}
	if t := c.Telekinesis; t != nil {
		if _, ok := names[t.Base]; !ok {
			errs = append(errs, fmt.Errorf("%w: telekinesis.base %q", ErrUnknownObject, t.Base))
		}
		if err := t.Controller.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: telekinesis: %w", ErrInvalidConfig, err))
		}
	}
	for i := 1; i < len(c.Input); i++ {
		if c.Input[i].At < c.Input[i-1].At {
			errs = append(errs, fmt.Errorf("%w: input events must be ordered by time", ErrInvalidConfig))
			break
		}
	}
	if c.Inspector.Every < 0 {
		errs = append(errs, fmt.Errorf("%w: inspector.every must not be negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (o ObjectConfig) Validate() error {
	switch o.Shape.Kind {
	case "sphere", "box":
	default:
		return fmt.Errorf("%w: shape.kind must be sphere or box, got %q", ErrInvalidConfig, o.Shape.Kind)
	}
	if o.Motion != nil {
		if o.Body == nil {
			return fmt.Errorf("%w: motion needs a body", ErrInvalidConfig)
		}
		if err := o.Motion.Validate(); err != nil {
			return fmt.Errorf("%w: motion: %w", ErrInvalidConfig, err)
		}
	}
	if o.ForceField != nil {
		if !o.Trigger {
			return fmt.Errorf("%w: force_field needs a trigger collider", ErrInvalidConfig)
		}
		if err := o.ForceField.Validate(); err != nil {
			return fmt.Errorf("%w: force_field: %w", ErrInvalidConfig, err)
		}
	}
	if o.Surface && !o.Trigger {
		return fmt.Errorf("%w: surface needs a trigger collider", ErrInvalidConfig)
	}
	if o.Player && o.Body != nil {
		return fmt.Errorf("%w: an object is either a player or a body", ErrInvalidConfig)
	}
	if !o.Layer.Valid() {
		return fmt.Errorf("%w: layer %d is above %d", ErrInvalidConfig, o.Layer, physics.MaxLayer)
	}
	if o.Body != nil && o.Body.Layer != nil && !o.Body.Layer.Valid() {
		return fmt.Errorf("%w: body.layer %d is above %d", ErrInvalidConfig, *o.Body.Layer, physics.MaxLayer)
	}
	return nil
}
