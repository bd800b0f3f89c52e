package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/kinetix/internal/scene"
)

func TestInitializeRuntime(t *testing.T) {
	cfg := scene.Default()
	cfg.Log.Level = "silent"
	cfg.Objects = []scene.ObjectConfig{{
		Name:  "ball",
		Shape: scene.ShapeConfig{Kind: "sphere", Radius: 1},
		Body:  &scene.BodyConfig{Gravity: true},
	}}

	rt, cleanup, err := InitializeRuntime(cfg, nil)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.RunFrames(context.Background(), 60))
	ball, ok := rt.World.Find("ball")
	require.True(t, ok)
	assert.Less(t, ball.Velocity().Y(), 0.0)
}

func TestInitializeRuntimeRejectsBadLogLevel(t *testing.T) {
	cfg := scene.Default()
	cfg.Log.Level = "chatty"
	_, _, err := InitializeRuntime(cfg, nil)
	assert.Error(t, err)
}
