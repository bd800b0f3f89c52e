package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvLogLevel      = "KINETIX_LOG_LEVEL"
	EnvInspectorAddr = "KINETIX_INSPECTOR_ADDR"
	EnvDuration      = "KINETIX_DURATION"
)

// LoadDotEnv loads the given .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the KINETIX_* variables found through
// lookup (os.LookupEnv when nil) and re-validates it.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvInspectorAddr); ok {
		cfg.Inspector.Addr = v
	}
	if v, ok := lookup(EnvDuration); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvDuration, err)
		}
		cfg.Time.Duration = d
	}
	return cfg.Validate()
}

// MapEnv adapts a map to the lookup function taken by ApplyEnv.
func MapEnv(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}
