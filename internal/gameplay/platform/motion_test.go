package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/systems"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

type motionRig struct {
	body      *fakeBody
	scheduler *systems.Scheduler
	motion    *Motion
}

func newMotionRig(t *testing.T, start physics.Vec3, cfg MotionConfig, opts ...MotionOption) *motionRig {
	t.Helper()
	body := &fakeBody{pos: start}
	sched := systems.NewScheduler()
	m, err := NewMotion("lift", body, sched, cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	return &motionRig{body: body, scheduler: sched, motion: m}
}

// step mirrors the manager order: timers, gameplay, then integration.
func (r *motionRig) step(t *testing.T, dt float64) {
	t.Helper()
	r.scheduler.Advance(dt)
	require.NoError(t, r.motion.FixedUpdate(dt))
	r.body.integrate(dt)
}

// runUntil steps until the motion enters want, failing after max steps.
func (r *motionRig) runUntil(t *testing.T, dt float64, want MotionState, max int) {
	t.Helper()
	for i := 0; i < max; i++ {
		r.step(t, dt)
		if r.motion.State() == want {
			return
		}
	}
	t.Fatalf("state %s not reached after %d steps", want, max)
}

func TestMotionValidate(t *testing.T) {
	body := &fakeBody{}
	sched := systems.NewScheduler()

	_, err := NewMotion("p", body, sched, MotionConfig{TimeToChangePosition: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewMotion("p", body, sched, MotionConfig{TimeToChangePosition: 1, StationaryTime: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewMotion("p", nil, sched, DefaultMotionConfig())
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestMotionDwellsBeforeFirstDeparture(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{0, 0, 10}, TimeToChangePosition: 3, StationaryTime: 1,
	})
	assert.Equal(t, Stationary, rig.motion.State())
	assert.Equal(t, MovingToTarget, rig.motion.NextState())

	for i := 0; i < 49; i++ {
		rig.step(t, 0.02)
	}
	assert.Equal(t, Stationary, rig.motion.State())
	assert.Equal(t, physics.Vec3{}, rig.body.pos)

	rig.step(t, 0.02)
	assert.Equal(t, MovingToTarget, rig.motion.State())
	assert.InDelta(t, 10.0/3.0, rig.body.vel.Len(), 1e-9)
	assert.InDelta(t, 10.0/3.0, rig.motion.TravelSpeed(), 1e-12)
}

func TestMotionSnapsToDestinationAndRoundTrips(t *testing.T) {
	for _, dt := range []float64{0.02, 0.013, 0.5, 2} {
		start := physics.Vec3{1, 2, 3}
		target := physics.Vec3{4, -2, 15}
		rig := newMotionRig(t, start, MotionConfig{
			Target: target, TimeToChangePosition: 3, StationaryTime: 0.5,
		})

		rig.runUntil(t, dt, MovingToTarget, 1000)
		rig.runUntil(t, dt, Stationary, 1000)
		assert.Equal(t, target, rig.body.pos, "dt=%v", dt)
		assert.Equal(t, physics.Zero, rig.body.vel)
		assert.Equal(t, MovingToInitial, rig.motion.NextState())

		rig.runUntil(t, dt, MovingToInitial, 1000)
		rig.runUntil(t, dt, Stationary, 1000)
		assert.Equal(t, start, rig.body.pos, "dt=%v", dt)
		assert.Equal(t, MovingToTarget, rig.motion.NextState())
	}
}

func TestMotionConstantSpeedAlongLine(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{6, 0, 8}, TimeToChangePosition: 2, StationaryTime: 0,
	})
	rig.runUntil(t, 0.01, MovingToTarget, 10)
	for rig.motion.State() == MovingToTarget {
		if rig.body.vel != physics.Zero {
			assert.InDelta(t, 5.0, rig.body.vel.Len(), 1e-9)
			// stays on the segment from origin towards (6,0,8)
			assert.InDelta(t, 0.0, rig.body.pos.Y(), 1e-9)
			assert.InDelta(t, rig.body.pos.X()*8/6, rig.body.pos.Z(), 1e-9)
		}
		rig.step(t, 0.01)
	}
	assert.Equal(t, physics.Vec3{6, 0, 8}, rig.body.pos)
}

func TestMotionStationaryHoldsVelocityAtZero(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{0, 0, 10}, TimeToChangePosition: 3, StationaryTime: 5,
	})
	rig.body.vel = physics.Vec3{3, 0, 0}
	require.NoError(t, rig.motion.FixedUpdate(0.02))
	assert.Equal(t, physics.Zero, rig.body.vel)
}

func TestMotionDestroyCancelsDeparture(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{0, 0, 10}, TimeToChangePosition: 3, StationaryTime: 1,
	})
	task := rig.motion.PendingDeparture()
	require.True(t, task.Pending())

	require.NoError(t, rig.motion.Destroy())
	assert.False(t, task.Pending())
	assert.Equal(t, 0, rig.scheduler.Len())

	for i := 0; i < 200; i++ {
		rig.step(t, 0.02)
	}
	assert.Equal(t, Stationary, rig.motion.State())
	assert.Equal(t, physics.Vec3{}, rig.body.pos)
}

func TestMotionReset(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{0, 0, 10}, TimeToChangePosition: 1, StationaryTime: 0.1,
	})
	rig.runUntil(t, 0.02, MovingToTarget, 100)
	for i := 0; i < 10; i++ {
		rig.step(t, 0.02)
	}
	require.NotEqual(t, physics.Vec3{}, rig.body.pos)

	rig.motion.Reset()
	assert.Equal(t, physics.Vec3{}, rig.body.pos)
	assert.Equal(t, Stationary, rig.motion.State())
	assert.Equal(t, MovingToTarget, rig.motion.NextState())
	assert.Equal(t, 1, rig.scheduler.Len())
}

func TestMotionDegenerateSegment(t *testing.T) {
	rig := newMotionRig(t, physics.Vec3{1, 1, 1}, MotionConfig{
		Target: physics.Vec3{1, 1, 1}, TimeToChangePosition: 1, StationaryTime: 0.1,
	})
	rig.scheduler.Advance(0.1)
	require.Equal(t, MovingToTarget, rig.motion.State())
	assert.Zero(t, rig.motion.TravelSpeed())

	require.NoError(t, rig.motion.FixedUpdate(0.02))
	assert.Equal(t, Stationary, rig.motion.State())
	assert.Equal(t, MovingToInitial, rig.motion.NextState())
	assert.Equal(t, physics.Vec3{1, 1, 1}, rig.body.pos)
}

func TestMotionPublishesStateChanges(t *testing.T) {
	b := bus.New()
	var changes []MotionStateChanged
	_, err := b.Subscribe(EventMotionState, func(e bus.Event) error {
		changes = append(changes, e.Data().(MotionStateChanged))
		return nil
	})
	require.NoError(t, err)

	rig := newMotionRig(t, physics.Vec3{}, MotionConfig{
		Target: physics.Vec3{0, 0, 1}, TimeToChangePosition: 0.1, StationaryTime: 0.1,
	}, WithMotionEvents(b))
	rig.runUntil(t, 0.02, MovingToTarget, 100)
	rig.runUntil(t, 0.02, Stationary, 100)

	require.Len(t, changes, 2)
	assert.Equal(t, MovingToTarget, changes[0].To)
	assert.Equal(t, Stationary, changes[1].To)
	assert.Equal(t, physics.Vec3{0, 0, 1}, changes[1].Position)
}

func TestMotionConfigYAML(t *testing.T) {
	var cfg MotionConfig
	require.NoError(t, yaml.Unmarshal([]byte("target: [0, 4, 0]\nstationary_time: 2\n"), &cfg))
	assert.Equal(t, physics.Vec3{0, 4, 0}, cfg.Target)
	assert.Equal(t, 3.0, cfg.TimeToChangePosition)
	assert.Equal(t, 2.0, cfg.StationaryTime)
}
