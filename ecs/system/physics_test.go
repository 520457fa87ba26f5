package system

import (
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysicsSystemSyncsBodies(t *testing.T) {
	w, solver := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)
	body, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)
	solver.SetVelocity(body.Body, physics.Vec{X: 60})

	sys := NewPhysicsSystem(60, nil)
	sys.Update(w)

	assert.Equal(t, 1, solver.Steps)
	assert.Equal(t, uint64(1), w.Clock().Tick())
	assert.InDelta(t, sys.Step(), w.Clock().Now(), 1e-12)

	tr, _ := ecs.Get(w, b.Entity(), component.TransformComponent)
	assert.InDelta(t, 201, tr.X, 1e-9)
	assert.InDelta(t, 150, tr.Y, 1e-9)
	assert.InDelta(t, 1.0/60, tr.Rotation, 1e-9)

	m, _ := ecs.Get(w, b.Entity(), component.MotionComponent)
	assert.Equal(t, 60.0, m.VX)
}

func TestPhysicsSystemDropsOrphans(t *testing.T) {
	w, solver := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)
	body, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)
	solver.RemoveBody(body.Body)

	NewPhysicsSystem(0, nil).Update(w)
	assert.False(t, w.IsAlive(b.Entity()))
}

func TestPhysicsSystemWithoutSolver(t *testing.T) {
	w := ecs.NewWorld()
	NewPhysicsSystem(60, nil).Update(w)
	assert.Zero(t, w.Clock().Tick())
}

func TestTTLDespawnsBody(t *testing.T) {
	w, solver := newTestWorld(t)
	e := w.CreateEntity()
	id := solver.CreateBody(1, physics.Vec{}, 0)
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: id}))
	require.NoError(t, ecs.Add(w, e, component.TTLComponent, component.TTL{Frames: 3}))

	sys := NewTTLSystem()
	for i := 0; i < 2; i++ {
		sys.Update(w)
		require.True(t, w.IsAlive(e))
	}
	sys.Update(w)
	assert.False(t, w.IsAlive(e))
	assert.False(t, solver.HasBody(id))
}
