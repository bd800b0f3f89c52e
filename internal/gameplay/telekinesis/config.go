package telekinesis

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/kinetix/internal/core/systems/physics"
)

type Config struct {
	// PullForce is the acceleration applied towards the base while pulling.
	PullForce float64 `yaml:"pull_force"`
	// PushForce is the acceleration applied away from the base while pushing.
	PushForce float64 `yaml:"push_force"`
	// Range is the maximum distance between the base and the hit point.
	Range float64 `yaml:"range"`
	// DetectionMask filters the layers the targeting ray can hit.
	DetectionMask physics.LayerMask `yaml:"detection_mask"`
}

func DefaultConfig() Config {
	return Config{PullForce: 60, PushForce: 60, Range: 70, DetectionMask: physics.AllLayers}
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
	for _, v := range []struct {
		name  string
		value float64
	}{{"pull_force", c.PullForce}, {"push_force", c.PushForce}, {"range", c.Range}} {
		if v.value < 0 || math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidConfig, v.name, v.value)
		}
	}
	return nil
}
