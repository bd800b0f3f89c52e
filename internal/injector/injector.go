//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
	"github.com/zeusync/kinetix/internal/scene"
)

// InitializeRuntime builds the logger and runtime for cfg. A nil input keeps
// the scene's scripted input.
func InitializeRuntime(cfg scene.Config, input telekinesis.Input) (*scene.Runtime, func(), error) {
	wire.Build(
		ProvideLogger,
		wire.Bind(new(log.Log), new(*log.Logger)),
		scene.NewRuntime,
	)
	return nil, nil, nil
}
