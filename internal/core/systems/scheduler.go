package systems

import (
	"container/heap"
	"math"
)

// timeEpsilon absorbs float drift between summed step deltas and due times.
const timeEpsilon = 1e-9

type taskState uint8

const (
	taskPending taskState = iota
	taskFired
	taskCancelled
)

// Task is a handle to a callback scheduled on a Scheduler. A fired or
// cancelled task is inert.
type Task struct {
	due   float64
	seq   uint64
	fn    func()
	state taskState
	index int
	owner *Scheduler
}

// Cancel prevents the callback from running. It reports whether the task
// was still pending. Safe to call on a nil task and more than once.
func (t *Task) Cancel() bool {
	if t == nil || t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	t.fn = nil
	if t.owner != nil && t.index >= 0 {
		heap.Remove(&t.owner.queue, t.index)
	}
	return true
}

// Pending reports whether the callback has neither run nor been cancelled.
func (t *Task) Pending() bool { return t != nil && t.state == taskPending }

// Due returns the simulation time at which the task fires.
func (t *Task) Due() float64 { return t.due }

// Scheduler runs fire-once callbacks after a delay measured in simulation
// time. It advances only when driven, through Advance or FixedUpdate, so
// callbacks run on the simulation goroutine between steps.
type Scheduler struct {
	now   float64
	seq   uint64
	queue taskQueue
}

var (
	_ System       = (*Scheduler)(nil)
	_ FixedUpdater = (*Scheduler)(nil)
	_ Destroyer    = (*Scheduler)(nil)
)

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Name() string       { return "scheduler" }
func (s *Scheduler) Priority() Priority { return PriorityHighest }

// After schedules fn to run once, delay seconds from now. A negative delay
// is treated as zero.
func (s *Scheduler) After(delay float64, fn func()) *Task {
	if delay < 0 || math.IsNaN(delay) {
		delay = 0
	}
	s.seq++
	t := &Task{due: s.now + delay, seq: s.seq, fn: fn, owner: s, index: -1}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock forward by dt and runs every task that became
// due, earliest first, ties in scheduling order. Tasks scheduled by a
// callback with a due time inside the window also run. It returns the
// number of callbacks run.
func (s *Scheduler) Advance(dt float64) int {
	if dt > 0 {
		s.now += dt
	}
	fired := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.due > s.now+timeEpsilon {
			break
		}
		heap.Pop(&s.queue)
		next.state = taskFired
		fn := next.fn
		next.fn = nil
		if fn != nil {
			fn()
			fired++
		}
	}
	return fired
}

func (s *Scheduler) FixedUpdate(fixedDeltaTime float64) error {
	s.Advance(fixedDeltaTime)
	return nil
}

// Destroy cancels every pending task.
func (s *Scheduler) Destroy() error {
	for s.queue.Len() > 0 {
		s.queue[0].Cancel()
	}
	return nil
}

// Now returns the scheduler clock in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return s.queue.Len() }

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
