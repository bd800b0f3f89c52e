package systems

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/kinetix/internal/core/observability/log"
)

// DefaultMaxCatchUpSteps bounds how many fixed steps one Frame may run
// after a long frame.
const DefaultMaxCatchUpSteps = 8

type entry struct {
	system  System
	order   int
	metrics Metrics
}

// Manager orchestrates the registered systems. Each Frame runs the Update
// pass once and then the FixedUpdate pass for every whole fixed step that
// has accumulated, so per-frame detection always precedes the physics
// steps of the same frame. Manager is not safe for concurrent use.
type Manager struct {
	entries   []*entry
	byName    map[string]*entry
	nextOrder int

	fixedStep   float64
	maxSteps    int
	accumulator float64

	frameCount uint64
	stepCount  uint64
	started    bool
	destroyed  bool

	logger  log.Log
	onError func(name string, phase ExecutionPhase, err error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for system errors and dropped steps.
func WithLogger(l log.Log) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMaxCatchUpSteps bounds the fixed steps run by a single Frame.
func WithMaxCatchUpSteps(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSteps = n
		}
	}
}

// WithErrorHandler registers a callback invoked for every failing system.
func WithErrorHandler(fn func(name string, phase ExecutionPhase, err error)) Option {
	return func(m *Manager) { m.onError = fn }
}

// NewManager creates a manager stepping physics every fixedStep seconds.
func NewManager(fixedStep float64, opts ...Option) (*Manager, error) {
	if !(fixedStep > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestep, fixedStep)
	}
	m := &Manager{
		byName:    make(map[string]*entry),
		fixedStep: fixedStep,
		maxSteps:  DefaultMaxCatchUpSteps,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Register adds a system. If the manager has already started, a Starter is
// started immediately.
func (m *Manager) Register(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	if m.destroyed {
		return ErrManagerDestroyed
	}
	name := s.Name()
	if _, ok := m.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, name)
	}
	e := &entry{system: s, order: m.nextOrder}
	m.nextOrder++
	m.byName[name] = e
	m.entries = append(m.entries, e)
	sort.SliceStable(m.entries, func(i, j int) bool {
		pi, pj := m.entries[i].system.Priority(), m.entries[j].system.Priority()
		if pi != pj {
			return pi > pj
		}
		return m.entries[i].order < m.entries[j].order
	})

	if m.started {
		if st, ok := s.(Starter); ok {
			return m.run(e, PhaseStart, func() error { return st.Start(context.Background()) })
		}
	}
	return nil
}

// Unregister removes a system, destroying it if it implements Destroyer.
func (m *Manager) Unregister(name string) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(m.byName, name)
	for i, other := range m.entries {
		if other == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	if d, ok := e.system.(Destroyer); ok {
		return m.run(e, PhaseDestroy, d.Destroy)
	}
	return nil
}

// Get returns a registered system by name.
func (m *Manager) Get(name string) (System, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

// Start runs every Starter once, in priority order.
func (m *Manager) Start(ctx context.Context) error {
	if m.destroyed {
		return ErrManagerDestroyed
	}
	if m.started {
		return nil
	}
	m.started = true

	var errs []error
	for _, e := range m.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, ok := e.system.(Starter)
		if !ok {
			continue
		}
		if err := m.run(e, PhaseStart, func() error { return st.Start(ctx) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Frame advances the simulation by one rendered frame of deltaTime seconds.
// It returns the joined errors of all failing systems; a failing system
// does not prevent the others from running.
func (m *Manager) Frame(deltaTime float64) error {
	if m.destroyed {
		return ErrManagerDestroyed
	}
	if deltaTime < 0 {
		deltaTime = 0
	}
	m.frameCount++

	var errs []error
	errs = append(errs, m.update(deltaTime)...)

	m.accumulator += deltaTime
	steps := 0
	for m.accumulator+1e-9 >= m.fixedStep && steps < m.maxSteps {
		errs = append(errs, m.fixed()...)
		m.accumulator -= m.fixedStep
		steps++
	}
	if m.accumulator+1e-9 >= m.fixedStep {
		dropped := int(m.accumulator / m.fixedStep)
		m.logger.Warn("dropping fixed steps after long frame",
			log.Int("dropped", dropped),
			log.Float64("frame_delta", deltaTime))
		m.accumulator = 0
	}
	if m.accumulator < 0 {
		m.accumulator = 0
	}
	return errors.Join(errs...)
}

// Step runs exactly one fixed step without an Update pass.
func (m *Manager) Step() error {
	if m.destroyed {
		return ErrManagerDestroyed
	}
	return errors.Join(m.fixed()...)
}

// Destroy destroys every system in reverse execution order. The manager
// cannot be used afterwards.
func (m *Manager) Destroy() error {
	if m.destroyed {
		return nil
	}
	m.destroyed = true

	var errs []error
	entries := m.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if d, ok := e.system.(Destroyer); ok {
			if err := m.run(e, PhaseDestroy, d.Destroy); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) update(dt float64) []error {
	var errs []error
	for _, e := range m.snapshot() {
		u, ok := e.system.(Updater)
		if !ok {
			continue
		}
		if err := m.run(e, PhaseUpdate, func() error { return u.Update(dt) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (m *Manager) fixed() []error {
	m.stepCount++
	var errs []error
	for _, e := range m.snapshot() {
		f, ok := e.system.(FixedUpdater)
		if !ok {
			continue
		}
		if err := m.run(e, PhaseFixedUpdate, func() error { return f.FixedUpdate(m.fixedStep) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (m *Manager) run(e *entry, phase ExecutionPhase, fn func() error) error {
	start := time.Now()
	err := fn()
	e.metrics.record(start, err)
	if err == nil {
		return nil
	}
	name := e.system.Name()
	err = fmt.Errorf("%s %s: %w", name, phase, err)
	m.logger.Error("system failed",
		log.String("system", name),
		log.String("phase", phase.String()),
		log.Error(err))
	if m.onError != nil {
		m.onError(name, phase, err)
	}
	return err
}

// snapshot copies the entry list so systems may register or unregister
// others while a pass is running.
func (m *Manager) snapshot() []*entry {
	out := make([]*entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Metrics returns the execution metrics of a system.
func (m *Manager) Metrics(name string) (Metrics, bool) {
	e, ok := m.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

// ExecutionOrder lists system names in the order they run.
func (m *Manager) ExecutionOrder() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.system.Name()
	}
	return names
}

func (m *Manager) FixedDeltaTime() float64 { return m.fixedStep }
func (m *Manager) FrameCount() uint64      { return m.frameCount }
func (m *Manager) StepCount() uint64       { return m.stepCount }

// SimTime is the simulated time covered by the fixed steps run so far.
func (m *Manager) SimTime() float64 { return float64(m.stepCount) * m.fixedStep }
