package system

import (
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics/physicstest"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) (*ecs.World, *physicstest.Solver) {
	t.Helper()
	w := ecs.NewWorld()
	s := physicstest.New()
	w.SetSolver(s)
	return w, s
}

func spawnTestBrush(t *testing.T, w *ecs.World, id string, kind shape.Kind, owned bool) *entity.Brush {
	t.Helper()
	opts := entity.DefaultBrushOptions()
	opts.ID = id
	opts.Shape = kind
	opts.Owned = owned
	opts.X, opts.Y = 200, 150
	b, err := entity.SpawnBrush(w, opts)
	require.NoError(t, err)
	return b
}

func spawnOptions(id string, kind shape.Kind) entity.BrushOptions {
	opts := entity.DefaultBrushOptions()
	opts.ID = id
	opts.Shape = kind
	opts.Owned = true
	return opts
}

func mustSpawn(t *testing.T, w *ecs.World, opts entity.BrushOptions) *entity.Brush {
	t.Helper()
	b, err := entity.SpawnBrush(w, opts)
	require.NoError(t, err)
	return b
}
