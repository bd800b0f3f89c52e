package physics

import (
	"fmt"
	"strings"
)

// ForceMode classifies how a force is applied to a body.
type ForceMode uint8

const (
	// ModeForce is continuous and mass-scaled.
	ModeForce ForceMode = iota
	// ModeAcceleration is continuous and mass-independent.
	ModeAcceleration
	// ModeImpulse is instantaneous and mass-scaled.
	ModeImpulse
	// ModeVelocityChange is instantaneous and mass-independent.
	ModeVelocityChange
)

// IsContinuous reports whether the mode is integrated over time.
func (m ForceMode) IsContinuous() bool {
	return m == ModeForce || m == ModeAcceleration
}

// IsInstant reports whether the mode is a one-shot delta.
func (m ForceMode) IsInstant() bool {
	return m == ModeImpulse || m == ModeVelocityChange
}

// MassScaled reports whether the applied vector is divided by body mass.
func (m ForceMode) MassScaled() bool {
	return m == ModeForce || m == ModeImpulse
}

func (m ForceMode) String() string {
	switch m {
	case ModeForce:
		return "force"
	case ModeAcceleration:
		return "acceleration"
	case ModeImpulse:
		return "impulse"
	case ModeVelocityChange:
		return "velocity_change"
	default:
		return fmt.Sprintf("ForceMode(%d)", uint8(m))
	}
}

// ParseForceMode accepts the names produced by String.
func ParseForceMode(s string) (ForceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "force", "":
		return ModeForce, nil
	case "acceleration":
		return ModeAcceleration, nil
	case "impulse":
		return ModeImpulse, nil
	case "velocity_change", "velocitychange":
		return ModeVelocityChange, nil
	}
	return 0, fmt.Errorf("%w: unknown force mode %q", ErrInvalidValue, s)
}

// UnmarshalText lets ForceMode be used directly in config structs.
func (m *ForceMode) UnmarshalText(b []byte) error {
	v, err := ParseForceMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m ForceMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Space selects the frame a configured vector is expressed in.
type Space uint8

const (
	SpaceWorld Space = iota
	SpaceLocal
)

func (s Space) String() string {
	if s == SpaceLocal {
		return "local"
	}
	return "world"
}

// ParseSpace accepts "world" or "local".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "world", "":
		return SpaceWorld, nil
	case "local", "self":
		return SpaceLocal, nil
	}
	return 0, fmt.Errorf("%w: unknown space %q", ErrInvalidValue, s)
}

func (s *Space) UnmarshalText(b []byte) error {
	v, err := ParseSpace(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Space) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Layer is a single collision layer index in [0, MaxLayer].
type Layer uint8

// MaxLayer is the highest layer a LayerMask can address.
const MaxLayer Layer = 31

// Valid reports whether l fits in a LayerMask.
func (l Layer) Valid() bool { return l <= MaxLayer }

// LayerMask is a bit set of layers.
type LayerMask uint32

// AllLayers matches every layer.
const AllLayers LayerMask = 0xFFFFFFFF

// MaskOf builds a mask from layer indices.
func MaskOf(layers ...Layer) LayerMask {
	var m LayerMask
	for _, l := range layers {
		m |= 1 << (l & 31)
	}
	return m
}

// Contains reports whether l is part of the mask.
func (m LayerMask) Contains(l Layer) bool { return m&(1<<(l&31)) != 0 }
