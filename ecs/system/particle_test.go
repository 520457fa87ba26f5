package system

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParticles(cfg ParticleConfig) *ParticleSystem {
	return NewParticleSystem(cfg, rand.New(rand.NewPCG(1, 2)), nil)
}

func particleSeqs(w *ecs.World, ps *ParticleSystem) []uint64 {
	out := make([]uint64, 0, ps.Len())
	for _, e := range ps.Pool() {
		p, _ := ecs.Get(w, e, component.ParticleComponent)
		out = append(out, p.Seq)
	}
	return out
}

func TestParticleSpawnPerContact(t *testing.T) {
	w, solver := newTestWorld(t)
	a := spawnTestBrush(t, w, "a", shape.KindCircle, true)
	b := spawnTestBrush(t, w, "b", shape.KindBox, true)
	ba, _ := ecs.Get(w, a.Entity(), component.PhysicsBodyComponent)
	bb, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)

	for i := 0; i < 3; i++ {
		solver.InjectContact(physics.Contact{A: ba.Body, B: bb.Body, Point: physics.Vec{X: float64(i), Y: 10}})
	}
	solver.Step(1.0 / 60)

	ps := newTestParticles(DefaultParticleConfig())
	ps.Update(w)

	require.Equal(t, 3, ps.Len())
	for i, e := range ps.Pool() {
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		require.True(t, ok)
		st, ok := solver.Body(body.Body)
		require.True(t, ok)
		assert.Equal(t, physics.Vec{X: float64(i), Y: 10}, st.Position)
		assert.InDelta(t, 140, st.Velocity.Len(), 1e-9)

		shapes := solver.Shapes(body.Body)
		require.Len(t, shapes, 1)
		f, _ := solver.ShapeFilter(shapes[0])
		assert.Equal(t, physics.FilterFor(physics.CategoryParticles), f)
		assert.False(t, f.Collides(f), "particles never collide with each other")
		d, _ := solver.Def(shapes[0])
		assert.Equal(t, 3.0, d.Radius)
	}
}

func TestParticleCapacityEvictsOldest(t *testing.T) {
	w, solver := newTestWorld(t)
	ps := newTestParticles(DefaultParticleConfig())

	var first []ecs.Entity
	for i := 0; i < 105; i++ {
		e, err := ps.Spawn(w, physics.Vec{X: float64(i)})
		require.NoError(t, err)
		if i < 5 {
			first = append(first, e)
		}
	}

	require.Equal(t, 100, ps.Len())
	seqs := particleSeqs(w, ps)
	assert.Equal(t, uint64(6), seqs[0])
	assert.Equal(t, uint64(105), seqs[len(seqs)-1])
	assert.Equal(t, 100, solver.BodyCount())
	assert.Len(t, solver.Removed, 5)
	for _, e := range first {
		assert.False(t, w.IsAlive(e))
	}
	assert.Len(t, w.Query(component.ParticleComponent), 100)
}

func TestParticleFIFOAcrossTicks(t *testing.T) {
	w, solver := newTestWorld(t)
	a := spawnTestBrush(t, w, "a", shape.KindCircle, true)
	ba, _ := ecs.Get(w, a.Entity(), component.PhysicsBodyComponent)
	static := solver.StaticBody()

	cfg := DefaultParticleConfig()
	cfg.MaxParticles = 10
	ps := newTestParticles(cfg)

	for tick := 0; tick < 4; tick++ {
		for i := 0; i < 4; i++ {
			solver.InjectContact(physics.Contact{A: ba.Body, B: static})
		}
		solver.Step(1.0 / 60)
		ps.Update(w)
	}

	require.Equal(t, 10, ps.Len())
	seqs := particleSeqs(w, ps)
	for i, s := range seqs {
		assert.Equal(t, uint64(7+i), s)
	}
}

func TestParticleSkipsStaleContacts(t *testing.T) {
	w, solver := newTestWorld(t)
	a := spawnTestBrush(t, w, "a", shape.KindCircle, true)
	b := spawnTestBrush(t, w, "b", shape.KindCircle, true)
	ba, _ := ecs.Get(w, a.Entity(), component.PhysicsBodyComponent)
	bb, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)

	solver.InjectContact(physics.Contact{A: ba.Body, B: bb.Body})
	solver.Step(1.0 / 60)
	require.True(t, b.Remove())

	ps := newTestParticles(DefaultParticleConfig())
	ps.Update(w)
	assert.Equal(t, 0, ps.Len())
}

func TestParticleZeroCapacity(t *testing.T) {
	w, solver := newTestWorld(t)
	cfg := DefaultParticleConfig()
	cfg.MaxParticles = 0
	ps := newTestParticles(cfg)

	_, err := ps.Spawn(w, physics.Vec{})
	require.NoError(t, err)
	assert.Equal(t, 0, ps.Len())
	assert.Equal(t, 0, solver.BodyCount())
}

func TestParticleLifetimePrunesPool(t *testing.T) {
	w, solver := newTestWorld(t)
	cfg := DefaultParticleConfig()
	cfg.Lifetime = 2
	ps := newTestParticles(cfg)
	ttl := NewTTLSystem()

	_, err := ps.Spawn(w, physics.Vec{})
	require.NoError(t, err)

	ttl.Update(w)
	ps.Update(w)
	assert.Equal(t, 1, ps.Len())

	ttl.Update(w)
	ps.Update(w)
	assert.Equal(t, 0, ps.Len())
	assert.Equal(t, 0, solver.BodyCount())
}

func TestParticleAxisCosineSpread(t *testing.T) {
	w, solver := newTestWorld(t)
	cfg := DefaultParticleConfig()
	cfg.Spread = entity.SpreadAxisCosine
	ps := newTestParticles(cfg)

	for i := 0; i < 20; i++ {
		e, err := ps.Spawn(w, physics.Vec{})
		require.NoError(t, err)
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		st, _ := solver.Body(body.Body)
		assert.LessOrEqual(t, math.Abs(st.Velocity.X), 140.0)
		assert.LessOrEqual(t, math.Abs(st.Velocity.Y), 140.0)
	}
}
