package inspector

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/kinetix/internal/scene"
)

// BodyState is one object in a Snapshot.
type BodyState struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Position  [3]float64 `json:"position"`
	Velocity  [3]float64 `json:"velocity"`
	Kinematic bool       `json:"kinematic,omitempty"`
	Trigger   bool       `json:"trigger,omitempty"`
}

type PlatformState struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Next  string `json:"next"`
}

type TelekinesisState struct {
	State        string     `json:"state"`
	Target       string     `json:"target,omitempty"`
	HitPoint     [3]float64 `json:"hit_point"`
	OutsideRange bool       `json:"outside_range,omitempty"`
	Cursor       string     `json:"cursor"`
}

// Snapshot is an immutable view of a runtime after a frame. Digest is the
// xxhash of the snapshot's JSON encoding with Digest left empty; two runs of
// the same scene produce the same digests.
type Snapshot struct {
	Scene       string            `json:"scene"`
	Step        uint64            `json:"step"`
	SimTime     float64           `json:"sim_time"`
	Bodies      []BodyState       `json:"bodies"`
	Platforms   []PlatformState   `json:"platforms,omitempty"`
	Telekinesis *TelekinesisState `json:"telekinesis,omitempty"`
	Contacts    int               `json:"contacts"`
	Digest      string            `json:"digest"`
}

// Capture reads the runtime state. It must run on the simulation
// goroutine.
func Capture(rt *scene.Runtime) Snapshot {
	s := Snapshot{
		Scene:    rt.Config.Name,
		Step:     rt.Manager.StepCount(),
		SimTime:  rt.SimTime(),
		Contacts: rt.World.ContactCount(),
	}
	for _, o := range rt.World.Objects() {
		s.Bodies = append(s.Bodies, BodyState{
			ID:        o.UUID().String(),
			Name:      o.Name(),
			Position:  o.Position(),
			Velocity:  o.Velocity(),
			Kinematic: o.IsKinematic(),
			Trigger:   o.IsTrigger(),
		})
	}
	for _, m := range rt.Motions {
		s.Platforms = append(s.Platforms, PlatformState{
			Name:  m.Name(),
			State: m.State().String(),
			Next:  m.NextState().String(),
		})
	}
	if c := rt.Telekinesis; c != nil {
		tk := &TelekinesisState{State: c.State().String(), Cursor: hexColor(c.CursorColor())}
		if t, ok := c.Target().Get(); ok {
			if t.Entity != nil {
				tk.Target = t.Entity.Name()
			}
			tk.HitPoint = t.HitPoint
			tk.OutsideRange = t.OutsideRange
		}
		s.Telekinesis = tk
	}
	s.Digest = s.digest()
	return s
}

func (s Snapshot) digest() string {
	s.Digest = ""
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Verify reports whether Digest matches the snapshot contents.
func (s Snapshot) Verify() bool { return s.Digest != "" && s.Digest == s.digest() }

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
