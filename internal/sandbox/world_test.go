package sandbox

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/kinetix/internal/core/events/bus"
	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

type contactLog struct {
	calls []string
}

func (l *contactLog) OnContactBegin(c physics.Contact)   { l.calls = append(l.calls, "begin:"+c.Other.Name()) }
func (l *contactLog) OnContactPersist(c physics.Contact) { l.calls = append(l.calls, "persist:"+c.Other.Name()) }
func (l *contactLog) OnContactEnd(c physics.Contact)     { l.calls = append(l.calls, "end:"+c.Other.Name()) }

func mustObject(t *testing.T, cfg ObjectConfig) *Object {
	t.Helper()
	o, err := NewObject(cfg)
	require.NoError(t, err)
	return o
}

func TestNewObjectDefaults(t *testing.T) {
	o := mustObject(t, ObjectConfig{Name: "ball", Shape: Sphere(1)})
	assert.NotEqual(t, uuid.Nil, o.UUID())
	assert.Equal(t, 1.0, o.Mass())
	assert.Equal(t, physics.Identity(), o.Rotation())

	_, err := NewObject(ObjectConfig{Name: "bad", Shape: Sphere(0)})
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = NewObject(ObjectConfig{Name: "bad", Shape: Sphere(1), Mass: -2})
	assert.ErrorIs(t, err, ErrInvalidObject)
}

func TestIntegrationModes(t *testing.T) {
	w := NewWorld(WithGravity(physics.Zero))
	o := mustObject(t, ObjectConfig{Name: "crate", Shape: Box(physics.Vec3{1, 1, 1}), Mass: 2})
	require.NoError(t, w.Add(o))
	rb := o.EnableBody()
	assert.Same(t, rb, o.EnableBody())

	rb.AddForce(physics.Vec3{4, 0, 0}, physics.ModeForce)
	require.NoError(t, w.FixedUpdate(0.5))
	assert.InDelta(t, 1.0, o.Velocity().X(), 1e-12) // 4/2 * 0.5
	assert.InDelta(t, 0.5, o.Position().X(), 1e-12)

	rb.AddForce(physics.Vec3{0, 4, 0}, physics.ModeImpulse)
	rb.AddForce(physics.Vec3{0, 0, 3}, physics.ModeVelocityChange)
	require.NoError(t, w.FixedUpdate(0.5))
	assert.InDelta(t, 2.0, o.Velocity().Y(), 1e-12)
	assert.InDelta(t, 3.0, o.Velocity().Z(), 1e-12)

	// accumulators clear after each step
	require.NoError(t, w.FixedUpdate(0.5))
	assert.InDelta(t, 2.0, o.Velocity().Y(), 1e-12)
}

func TestKinematicIgnoresForcesAndGravity(t *testing.T) {
	w := NewWorld()
	o := mustObject(t, ObjectConfig{Name: "lift", Shape: Box(physics.Vec3{2, 0.2, 2}), Kinematic: true, Gravity: true})
	require.NoError(t, w.Add(o))
	rb := o.EnableBody()
	rb.AddForce(physics.Vec3{100, 0, 0}, physics.ModeAcceleration)
	rb.SetVelocity(physics.Vec3{0, 0, 1})

	require.NoError(t, w.FixedUpdate(0.1))
	assert.Equal(t, physics.Vec3{0, 0, 1}, o.Velocity())
	assert.InDelta(t, 0.1, o.Position().Z(), 1e-12)
}

func TestGravityAndDrag(t *testing.T) {
	w := NewWorld()
	o := mustObject(t, ObjectConfig{Name: "ball", Shape: Sphere(0.5), Gravity: true})
	require.NoError(t, w.Add(o))
	require.NoError(t, w.FixedUpdate(1))
	assert.InDelta(t, -9.81, o.Velocity().Y(), 1e-12)

	d := mustObject(t, ObjectConfig{Name: "feather", Shape: Sphere(0.5), Drag: 1, Velocity: physics.Vec3{2, 0, 0}})
	require.NoError(t, w.Add(d))
	require.NoError(t, w.FixedUpdate(1))
	assert.InDelta(t, 1.0, d.Velocity().X(), 1e-12)
}

func TestContactLifecycle(t *testing.T) {
	b := bus.New()
	var published []string
	_, err := b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		published = append(published, e.Type())
		return nil
	})
	require.NoError(t, err)

	w := NewWorld(WithGravity(physics.Zero), WithEvents(b))
	zone := mustObject(t, ObjectConfig{Name: "zone", Shape: Box(physics.Vec3{2, 2, 2}), Trigger: true})
	ball := mustObject(t, ObjectConfig{Name: "ball", Shape: Sphere(0.5), Position: physics.Vec3{-3, 0, 0}, Velocity: physics.Vec3{10, 0, 0}})
	zoneLog, ballLog := &contactLog{}, &contactLog{}
	zone.AddCapability(zoneLog)
	ball.AddCapability(ballLog)
	require.NoError(t, w.Add(zone))
	require.NoError(t, w.Add(ball))

	// x: -2, -1 (begin), 0, 1, 2 (end), 3
	for i := 0; i < 6; i++ {
		require.NoError(t, w.FixedUpdate(0.1))
	}

	assert.Equal(t, []string{"begin:ball", "persist:ball", "persist:ball", "end:ball"}, zoneLog.calls)
	assert.Equal(t, []string{"begin:zone", "persist:zone", "persist:zone", "end:zone"}, ballLog.calls)
	assert.Equal(t, []string{EventContactBegin, EventContactEnd}, published)
	assert.Zero(t, w.ContactCount())
}

func TestSolidPairsDoNotReportContacts(t *testing.T) {
	w := NewWorld(WithGravity(physics.Zero))
	a := mustObject(t, ObjectConfig{Name: "a", Shape: Sphere(1)})
	b := mustObject(t, ObjectConfig{Name: "b", Shape: Sphere(1)})
	l := &contactLog{}
	a.AddCapability(l)
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(b))
	require.NoError(t, w.FixedUpdate(0.1))
	assert.Empty(t, l.calls)
}

func TestRemoveEndsContacts(t *testing.T) {
	w := NewWorld(WithGravity(physics.Zero))
	zone := mustObject(t, ObjectConfig{Name: "zone", Shape: Sphere(2), Trigger: true})
	ball := mustObject(t, ObjectConfig{Name: "ball", Shape: Sphere(0.5)})
	l := &contactLog{}
	zone.AddCapability(l)
	require.NoError(t, w.Add(zone))
	require.NoError(t, w.Add(ball))
	require.NoError(t, w.FixedUpdate(0.1))

	require.NoError(t, w.Remove(ball.UUID()))
	assert.Equal(t, []string{"begin:ball", "end:ball"}, l.calls)
	assert.ErrorIs(t, w.Remove(ball.UUID()), ErrObjectNotFound)
	assert.ErrorIs(t, w.Add(zone), ErrDuplicateObject)
	assert.Len(t, w.Objects(), 1)
}

func TestRaycastNearestAndMasks(t *testing.T) {
	w := NewWorld()
	near := mustObject(t, ObjectConfig{Name: "near", Shape: Sphere(1), Position: physics.Vec3{0, 0, 5}, Layer: 1})
	far := mustObject(t, ObjectConfig{Name: "far", Shape: Box(physics.Vec3{2, 2, 2}), Position: physics.Vec3{0, 0, 10}})
	trigger := mustObject(t, ObjectConfig{Name: "zone", Shape: Sphere(1), Position: physics.Vec3{0, 0, 2}, Trigger: true})
	for _, o := range []*Object{far, near, trigger} {
		require.NoError(t, w.Add(o))
	}
	near.EnableBody()

	ray := physics.NewRay(physics.Zero, physics.Forward)
	hit, ok := w.Raycast(ray, math.Inf(1), physics.AllLayers)
	require.True(t, ok)
	assert.Equal(t, "near", hit.Entity.Name())
	assert.InDelta(t, 4.0, hit.Distance, 1e-9)
	assertVecNear(t, physics.Vec3{0, 0, 4}, hit.Point)
	require.NotNil(t, hit.Body)

	hit, ok = w.Raycast(ray, math.Inf(1), physics.MaskOf(0))
	require.True(t, ok)
	assert.Equal(t, "far", hit.Entity.Name())
	assert.InDelta(t, 9.0, hit.Distance, 1e-9)
	assert.Nil(t, hit.Body)

	_, ok = w.Raycast(ray, 3, physics.AllLayers)
	assert.False(t, ok)

	tw := NewWorld(WithRaycastHitsTriggers(true))
	require.NoError(t, tw.Add(trigger))
	hit, ok = tw.Raycast(ray, math.Inf(1), physics.AllLayers)
	require.True(t, ok)
	assert.Equal(t, "zone", hit.Entity.Name())
}

func TestRaycastSkipsColliderContainingOrigin(t *testing.T) {
	w := NewWorld()
	self := mustObject(t, ObjectConfig{Name: "player", Shape: Sphere(1)})
	wall := mustObject(t, ObjectConfig{Name: "wall", Shape: Box(physics.Vec3{4, 4, 1}), Position: physics.Vec3{0, 0, 6}})
	require.NoError(t, w.Add(self))
	require.NoError(t, w.Add(wall))

	hit, ok := w.Raycast(physics.NewRay(physics.Zero, physics.Forward), math.Inf(1), physics.AllLayers)
	require.True(t, ok)
	assert.Equal(t, "wall", hit.Entity.Name())
	assert.InDelta(t, 5.5, hit.Distance, 1e-9)
}

func TestOverlapShapes(t *testing.T) {
	box := Box(physics.Vec3{2, 2, 2})
	assert.True(t, overlaps(Sphere(1), physics.Vec3{1.9, 0, 0}, box, physics.Zero))
	assert.False(t, overlaps(Sphere(1), physics.Vec3{2.1, 0, 0}, box, physics.Zero))
	assert.True(t, overlaps(box, physics.Zero, Sphere(1), physics.Vec3{0, 2, 0}))
	assert.True(t, overlaps(box, physics.Zero, box, physics.Vec3{2, 0, 0}))
	assert.False(t, overlaps(box, physics.Zero, box, physics.Vec3{2, 2.1, 0}))
}
