package sandbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
	"github.com/zeusync/kinetix/internal/gameplay/forcefield"
	"github.com/zeusync/kinetix/internal/gameplay/platform"
	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
	"github.com/zeusync/kinetix/internal/sandbox"
)

const step = 0.02

func newManager(t *testing.T, world *sandbox.World, extra ...systems.System) *systems.Manager {
	t.Helper()
	m, err := systems.NewManager(step)
	require.NoError(t, err)
	require.NoError(t, m.Register(world))
	for _, s := range extra {
		require.NoError(t, m.Register(s))
	}
	return m
}

func object(t *testing.T, world *sandbox.World, cfg sandbox.ObjectConfig) *sandbox.Object {
	t.Helper()
	o, err := sandbox.NewObject(cfg)
	require.NoError(t, err)
	require.NoError(t, world.Add(o))
	return o
}

func TestPlatformCarriesRider(t *testing.T) {
	world := sandbox.NewWorld(sandbox.WithGravity(physics.Zero))
	sched := systems.NewScheduler()

	lift := object(t, world, sandbox.ObjectConfig{
		Name: "lift", Shape: sandbox.Box(physics.Vec3{4, 1, 4}), Kinematic: true, Trigger: true,
	})
	motion, err := platform.NewMotion("lift", lift.EnableBody(), sched, platform.MotionConfig{
		Target: physics.Vec3{0, 0, 2}, TimeToChangePosition: 1, StationaryTime: 1,
	})
	require.NoError(t, err)
	surface, err := platform.NewSurface("lift", lift)
	require.NoError(t, err)
	lift.AddCapability(surface)

	start := physics.Vec3{1, 0.9, 0}
	rider := object(t, world, sandbox.ObjectConfig{Name: "player", Shape: sandbox.Sphere(0.5), Position: start})
	tracker, err := platform.NewRiderTracker("player", rider)
	require.NoError(t, err)
	rider.AddCapability(tracker)

	m := newManager(t, world, sched, motion, tracker)
	require.NoError(t, m.Start(context.Background()))

	// dwell 1s, travel 1s, then a few steps parked at the target
	for i := 0; i < 110; i++ {
		require.NoError(t, m.Frame(step))
	}

	assert.Equal(t, platform.Stationary, motion.State())
	assert.Equal(t, physics.Vec3{0, 0, 2}, lift.Position())
	got, ok := tracker.Surface()
	require.True(t, ok)
	assert.Same(t, surface, got)
	assertVecNear(t, start.Add(physics.Vec3{0, 0, 2}), rider.Position())
}

func TestForceFieldPushesPlayer(t *testing.T) {
	world := sandbox.NewWorld(sandbox.WithGravity(physics.Zero))
	zone := object(t, world, sandbox.ObjectConfig{Name: "wind", Shape: sandbox.Box(physics.Vec3{10, 10, 10}), Trigger: true})
	cfg := forcefield.DefaultConfig()
	cfg.Force = physics.Vec3{10, 0, 0}
	field, err := forcefield.New("wind", zone, cfg)
	require.NoError(t, err)
	zone.AddCapability(field)

	player := object(t, world, sandbox.ObjectConfig{Name: "player", Shape: sandbox.Sphere(0.5)})
	player.EnablePlayer()

	m := newManager(t, world)
	require.NoError(t, m.Start(context.Background()))

	// begin on step 1, persist from step 2
	for i := 0; i < 6; i++ {
		require.NoError(t, m.Frame(step))
	}
	assert.InDelta(t, 5*10*step, player.Velocity().X(), 1e-9)
}

func TestImpulseFieldLaunchesBodyOnce(t *testing.T) {
	world := sandbox.NewWorld(sandbox.WithGravity(physics.Zero))
	pad := object(t, world, sandbox.ObjectConfig{Name: "pad", Shape: sandbox.Box(physics.Vec3{2, 2, 2}), Trigger: true})
	cfg := forcefield.DefaultConfig()
	cfg.Force = physics.Vec3{0, 6, 0}
	cfg.Mode = physics.ModeImpulse
	field, err := forcefield.New("pad", pad, cfg)
	require.NoError(t, err)
	pad.AddCapability(field)

	crate := object(t, world, sandbox.ObjectConfig{Name: "crate", Shape: sandbox.Sphere(0.25), Mass: 3})
	crate.EnableBody()

	m := newManager(t, world)
	require.NoError(t, m.Start(context.Background()))
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Frame(step))
	}
	assert.InDelta(t, 2.0, crate.Velocity().Y(), 1e-9)
}

func TestTelekinesisPullsCrate(t *testing.T) {
	world := sandbox.NewWorld(sandbox.WithGravity(physics.Zero))
	player := object(t, world, sandbox.ObjectConfig{Name: "player", Shape: sandbox.Sphere(0.5)})
	crate := object(t, world, sandbox.ObjectConfig{Name: "crate", Shape: sandbox.Sphere(0.5), Position: physics.Vec3{0, 0, 3.5}})
	crate.EnableBody()

	cam := sandbox.NewCamera(physics.Zero, physics.Identity())
	cam.Attach(player, physics.Zero)
	pull := true
	input := telekinesis.InputFunc{Pull: func() bool { return pull }}
	cfg := telekinesis.DefaultConfig()
	cfg.Range = 5
	ctrl, err := telekinesis.New("player", player, cam, world, input, cfg)
	require.NoError(t, err)

	m := newManager(t, world, ctrl)
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Frame(step))

	assert.Equal(t, telekinesis.Pulling, ctrl.State())
	target, ok := ctrl.Target().Get()
	require.True(t, ok)
	assert.InDelta(t, 3.0, target.HitPoint.Z(), 1e-9)
	assert.InDelta(t, -60*step, crate.Velocity().Z(), 1e-9)

	pull = false
	require.NoError(t, m.Frame(step))
	assert.Equal(t, telekinesis.Idle, ctrl.State())
	assert.InDelta(t, -60*step, crate.Velocity().Z(), 1e-9)
}

func assertVecNear(t *testing.T, want, got physics.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-9, "got %v", got)
}
