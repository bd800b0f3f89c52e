package forcefield

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

// Config describes what a field pushes and how.
type Config struct {
	Force physics.Vec3      `yaml:"force"`
	Space physics.Space     `yaml:"space"`
	Mode  physics.ForceMode `yaml:"mode"`

	AffectsPlayer      bool `yaml:"affects_player"`
	AffectsRigidbodies bool `yaml:"affects_rigidbodies"`
}

// DefaultConfig affects both players and rigid bodies with a zero world
// space force.
func DefaultConfig() Config {
	return Config{
		Space:              physics.SpaceWorld,
		Mode:               physics.ModeForce,
		AffectsPlayer:      true,
		AffectsRigidbodies: true,
	}
}

// UnmarshalYAML decodes over DefaultConfig() so omitted keys keep their defaults.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	out := plain(DefaultConfig())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*c = Config(out)
	return nil
}

func (c Config) Validate() error {
	if !physics.IsFinite(c.Force) {
		return fmt.Errorf("%w: force must be finite", ErrInvalidConfig)
	}
	if !c.Mode.IsContinuous() && !c.Mode.IsInstant() {
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidConfig, c.Mode)
	}
	if c.Space != physics.SpaceWorld && c.Space != physics.SpaceLocal {
		return fmt.Errorf("%w: unknown space %s", ErrInvalidConfig, c.Space)
	}
	return nil
}
