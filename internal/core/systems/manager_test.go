package systems

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name     string
	priority Priority
	calls    *[]string
	fail     error
	started  int
	destroys int
}

func (s *recordingSystem) Name() string       { return s.name }
func (s *recordingSystem) Priority() Priority { return s.priority }

func (s *recordingSystem) Start(context.Context) error {
	s.started++
	*s.calls = append(*s.calls, s.name+".start")
	return nil
}

func (s *recordingSystem) Update(float64) error {
	*s.calls = append(*s.calls, s.name+".update")
	return s.fail
}

func (s *recordingSystem) FixedUpdate(float64) error {
	*s.calls = append(*s.calls, s.name+".fixed")
	return s.fail
}

func (s *recordingSystem) Destroy() error {
	s.destroys++
	*s.calls = append(*s.calls, s.name+".destroy")
	return nil
}

func TestNewManagerRejectsBadTimestep(t *testing.T) {
	_, err := NewManager(0)
	assert.ErrorIs(t, err, ErrInvalidTimestep)
	_, err = NewManager(-0.02)
	assert.ErrorIs(t, err, ErrInvalidTimestep)
}

func TestManagerOrdersByPriorityThenRegistration(t *testing.T) {
	m, err := NewManager(0.02)
	require.NoError(t, err)

	var calls []string
	require.NoError(t, m.Register(&recordingSystem{name: "world", priority: PriorityLowest, calls: &calls}))
	require.NoError(t, m.Register(&recordingSystem{name: "a", priority: PriorityNormal, calls: &calls}))
	require.NoError(t, m.Register(&recordingSystem{name: "b", priority: PriorityNormal, calls: &calls}))
	require.NoError(t, m.Register(&recordingSystem{name: "timers", priority: PriorityHighest, calls: &calls}))

	assert.Equal(t, []string{"timers", "a", "b", "world"}, m.ExecutionOrder())

	err = m.Register(&recordingSystem{name: "a", calls: &calls})
	assert.ErrorIs(t, err, ErrDuplicateSystem)
	assert.ErrorIs(t, m.Register(nil), ErrNilSystem)
}

func TestFrameRunsUpdateBeforeFixedSteps(t *testing.T) {
	m, err := NewManager(0.02)
	require.NoError(t, err)

	var calls []string
	require.NoError(t, m.Register(&recordingSystem{name: "s", priority: PriorityNormal, calls: &calls}))
	require.NoError(t, m.Start(context.Background()))

	calls = nil
	require.NoError(t, m.Frame(0.05))
	assert.Equal(t, []string{"s.update", "s.fixed", "s.fixed"}, calls)
	assert.Equal(t, uint64(2), m.StepCount())

	// leftover 0.01 + 0.01 completes a third step
	calls = nil
	require.NoError(t, m.Frame(0.01))
	assert.Equal(t, []string{"s.update", "s.fixed"}, calls)
	assert.InDelta(t, 0.06, m.SimTime(), 1e-12)
	assert.Equal(t, uint64(2), m.FrameCount())
}

func TestFrameClampsCatchUp(t *testing.T) {
	m, err := NewManager(0.01, WithMaxCatchUpSteps(3))
	require.NoError(t, err)

	var calls []string
	require.NoError(t, m.Register(&recordingSystem{name: "s", calls: &calls}))
	require.NoError(t, m.Frame(1))
	assert.Equal(t, uint64(3), m.StepCount())

	require.NoError(t, m.Frame(0))
	assert.Equal(t, uint64(3), m.StepCount())
}

func TestFailingSystemDoesNotStopOthers(t *testing.T) {
	var reported []string
	m, err := NewManager(0.02, WithErrorHandler(func(name string, phase ExecutionPhase, err error) {
		reported = append(reported, name+":"+phase.String())
	}))
	require.NoError(t, err)

	boom := errors.New("boom")
	var calls []string
	require.NoError(t, m.Register(&recordingSystem{name: "bad", priority: PriorityHigh, calls: &calls, fail: boom}))
	require.NoError(t, m.Register(&recordingSystem{name: "good", priority: PriorityLow, calls: &calls}))

	err = m.Step()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, calls, "good.fixed")
	assert.Equal(t, []string{"bad:fixed_update"}, reported)

	metrics, ok := m.Metrics("bad")
	require.True(t, ok)
	assert.Equal(t, uint64(1), metrics.ErrorCount)
	assert.ErrorIs(t, metrics.LastError, boom)
}

func TestRegisterAfterStartStartsSystem(t *testing.T) {
	m, err := NewManager(0.02)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	var calls []string
	s := &recordingSystem{name: "late", calls: &calls}
	require.NoError(t, m.Register(s))
	assert.Equal(t, 1, s.started)
}

func TestUnregisterAndDestroy(t *testing.T) {
	m, err := NewManager(0.02)
	require.NoError(t, err)

	var calls []string
	a := &recordingSystem{name: "a", priority: PriorityHigh, calls: &calls}
	b := &recordingSystem{name: "b", priority: PriorityLow, calls: &calls}
	require.NoError(t, m.Register(a))
	require.NoError(t, m.Register(b))

	require.NoError(t, m.Unregister("a"))
	assert.Equal(t, 1, a.destroys)
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.ErrorIs(t, m.Unregister("a"), ErrSystemNotFound)

	require.NoError(t, m.Destroy())
	assert.Equal(t, 1, b.destroys)
	assert.ErrorIs(t, m.Frame(0.02), ErrManagerDestroyed)
	require.NoError(t, m.Destroy())
}

func TestSchedulerAsSystem(t *testing.T) {
	m, err := NewManager(0.5)
	require.NoError(t, err)
	s := NewScheduler()
	require.NoError(t, m.Register(s))

	fired := false
	s.After(1, func() { fired = true })
	require.NoError(t, m.Step())
	assert.False(t, fired)
	require.NoError(t, m.Step())
	assert.True(t, fired)
}
