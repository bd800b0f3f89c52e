package scene

import (
	"sort"

	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
)

// ScriptedInput replays InputEvents against a simulation clock.
type ScriptedInput struct {
	events []InputEvent
	now    func() float64
}

var _ telekinesis.Input = (*ScriptedInput)(nil)

// NewScriptedInput sorts a copy of events by time. now reports the current
// simulated time in seconds.
func NewScriptedInput(events []InputEvent, now func() float64) *ScriptedInput {
	sorted := append([]InputEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &ScriptedInput{events: sorted, now: now}
}

func (s *ScriptedInput) current() (InputEvent, bool) {
	t := s.now()
	i := sort.Search(len(s.events), func(i int) bool { return s.events[i].At > t+1e-9 })
	if i == 0 {
		return InputEvent{}, false
	}
	return s.events[i-1], true
}

func (s *ScriptedInput) PullHeld() bool {
	e, ok := s.current()
	return ok && e.Pull
}

func (s *ScriptedInput) PushHeld() bool {
	e, ok := s.current()
	return ok && e.Push
}
