package systems

import (
	"context"
	"time"
)

// System is a unit of game logic driven by the Manager. Phase methods are
// optional: a system takes part in a phase by implementing the matching
// interface below.
type System interface {
	Name() string
	Priority() Priority
}

// Starter runs once before the first frame, or on registration when the
// manager is already running.
type Starter interface {
	Start(ctx context.Context) error
}

// Updater runs once per rendered frame with the variable frame delta.
// Input sampling and raycasts belong here.
type Updater interface {
	Update(deltaTime float64) error
}

// FixedUpdater runs once per fixed physics step. Force application and
// position or velocity mutation belong here.
type FixedUpdater interface {
	FixedUpdate(fixedDeltaTime float64) error
}

// Destroyer releases resources such as pending scheduled tasks.
type Destroyer interface {
	Destroy() error
}

// Priority defines execution order inside a phase. Higher runs first.
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase identifies which manager pass invoked a system.
type ExecutionPhase uint8

const (
	PhaseStart ExecutionPhase = iota
	PhaseUpdate
	PhaseFixedUpdate
	PhaseDestroy
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseUpdate:
		return "update"
	case PhaseFixedUpdate:
		return "fixed_update"
	case PhaseDestroy:
		return "destroy"
	}
	return "unknown"
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(start time.Time, err error) {
	elapsed := time.Since(start)
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	m.LastExecutionTime = start
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
