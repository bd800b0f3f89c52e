package injector

import (
	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/scene"
)

// ProvideLogger builds the scene logger from its log section.
func ProvideLogger(cfg scene.Config) (*log.Logger, error) {
	return log.NewFromConfig(cfg.Log)
}
