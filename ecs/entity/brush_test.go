package entity

import (
	"image/color"
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/physics/physicstest"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) (*ecs.World, *physicstest.Solver) {
	t.Helper()
	w := ecs.NewWorld()
	s := physicstest.New()
	w.SetSolver(s)
	return w, s
}

func ownedOptions(id string) BrushOptions {
	opts := DefaultBrushOptions()
	opts.ID = id
	opts.Owned = true
	return opts
}

func brushEvents(w *ecs.World) []ecs.Event {
	var out []ecs.Event
	for _, ev := range w.Events().Drain() {
		if ev.Type.Replicated() {
			out = append(out, ev)
		}
	}
	return out
}

func TestSpawnBrushDefaults(t *testing.T) {
	w, solver := newWorld(t)
	b, err := SpawnBrush(w, ownedOptions(""))
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID())
	assert.Equal(t, shape.KindCircle, b.Kind())
	assert.True(t, b.Owned())

	fr, ok := b.Frame()
	require.True(t, ok)
	assert.Equal(t, DefaultFill, fr.Fill)
	assert.Equal(t, DefaultStroke, fr.Stroke)
	assert.Equal(t, 1.0, fr.Scale)
	assert.Nil(t, fr.FillImage)

	body, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)
	assert.Equal(t, DefaultBrushMass, body.Mass)
	assert.Equal(t, 1, solver.ShapeCount(body.Body))

	geom, _ := ecs.Get(w, b.Entity(), component.GeometryComponent)
	f, _ := solver.ShapeFilter(geom.ShapeID)
	assert.True(t, f.Inert(), "fresh shapes start inert")
	assert.Equal(t, physics.CategoryBrush, f.Categories)

	grace, ok := ecs.Get(w, b.Entity(), component.ContactGraceComponent)
	require.True(t, ok)
	assert.Equal(t, DefaultGraceDelay, grace.ReadyAt)

	evts := brushEvents(w)
	require.Len(t, evts, 1)
	assert.Equal(t, ecs.EventBrushSpawned, evts[0].Type)
	assert.Equal(t, "CIRCLE", evts[0].Data.(ecs.BrushEvent).Value)
}

func TestSpawnBrushErrors(t *testing.T) {
	w, solver := newWorld(t)
	_, err := SpawnBrush(w, ownedOptions("dup"))
	require.NoError(t, err)

	_, err = SpawnBrush(w, ownedOptions("dup"))
	assert.ErrorIs(t, err, ErrDuplicateBrush)

	opts := ownedOptions("bad")
	opts.Shape = shape.Kind(42)
	_, err = SpawnBrush(w, opts)
	assert.ErrorIs(t, err, shape.ErrUnknownKind)
	assert.Equal(t, 1, solver.BodyCount())

	_, err = SpawnBrush(ecs.NewWorld(), ownedOptions("x"))
	assert.ErrorIs(t, err, ErrNoSolver)
}

func TestBrushColorEvents(t *testing.T) {
	w, _ := newWorld(t)
	b, err := SpawnBrush(w, ownedOptions("b1"))
	require.NoError(t, err)
	w.Events().Drain()

	require.NoError(t, b.SetFill(color.NRGBA{R: 0xff, G: 0x80, A: 0xff}))
	require.NoError(t, b.SetStroke(color.NRGBA{B: 0x10, A: 0xff}))

	evts := brushEvents(w)
	require.Len(t, evts, 2)
	assert.Equal(t, ecs.EventFillChanged, evts[0].Type)
	assert.Equal(t, ecs.BrushEvent{Entity: b.Entity(), BrushID: "b1", Value: "#ff8000"}, evts[0].Data)
	assert.Equal(t, ecs.EventStrokeChanged, evts[1].Type)
	assert.Equal(t, "#000010", evts[1].Data.(ecs.BrushEvent).Value)

	fr, _ := b.Frame()
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, fr.Fill)
}

func TestSetShapeBox(t *testing.T) {
	w, solver := newWorld(t)
	b, err := SpawnBrush(w, ownedOptions("b1"))
	require.NoError(t, err)
	body, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)
	w.Events().Drain()

	var counts []int
	solver.Observe = func(id physics.BodyID, shapes int) {
		if id == body.Body {
			counts = append(counts, shapes)
		}
	}

	for _, kind := range []shape.Kind{shape.KindBox, shape.KindSquare, shape.KindCircle, shape.KindBox} {
		require.NoError(t, b.SetShape(kind))
		assert.Equal(t, kind, b.Kind())
	}
	for _, n := range counts {
		assert.Equal(t, 1, n, "body must always carry exactly one shape")
	}
	assert.Len(t, solver.Shapes(body.Body), 1)

	geom, _ := ecs.Get(w, b.Entity(), component.GeometryComponent)
	assert.Equal(t, []physics.Vec{{X: -50, Y: -25}, {X: 50, Y: -25}, {X: 50, Y: 25}, {X: -50, Y: 25}}, geom.Base)
	assert.Equal(t, geom.Base, geom.Live)
	assert.Equal(t, 1.0, geom.Factor)
	def, ok := solver.Def(geom.ShapeID)
	require.True(t, ok)
	assert.Equal(t, physics.ShapePolygon, def.Type)

	evts := brushEvents(w)
	require.Len(t, evts, 4)
	assert.Equal(t, ecs.EventShapeChanged, evts[3].Type)
	assert.Equal(t, "BOX", evts[3].Data.(ecs.BrushEvent).Value)
}

func TestSetShapeUnknownKeepsShape(t *testing.T) {
	w, solver := newWorld(t)
	opts := ownedOptions("b1")
	opts.Shape = shape.KindSquare
	b, err := SpawnBrush(w, opts)
	require.NoError(t, err)
	w.Events().Drain()

	geom, _ := ecs.Get(w, b.Entity(), component.GeometryComponent)
	err = b.SetShape(shape.Kind(9))
	assert.ErrorIs(t, err, shape.ErrUnknownKind)

	after, _ := ecs.Get(w, b.Entity(), component.GeometryComponent)
	assert.Equal(t, geom.ShapeID, after.ShapeID)
	assert.Equal(t, shape.KindSquare, b.Kind())
	_, ok := solver.Def(geom.ShapeID)
	assert.True(t, ok)
	assert.Empty(t, w.Events().Drain())
}

func TestRemoveBrush(t *testing.T) {
	w, solver := newWorld(t)
	b, err := SpawnBrush(w, ownedOptions("b1"))
	require.NoError(t, err)
	body, _ := ecs.Get(w, b.Entity(), component.PhysicsBodyComponent)
	w.Events().Drain()

	require.True(t, b.Remove())
	assert.False(t, b.Alive())
	assert.False(t, solver.HasBody(body.Body))
	assert.Equal(t, []physics.BodyID{body.Body}, solver.Removed)

	evts := brushEvents(w)
	require.Len(t, evts, 1)
	assert.Equal(t, ecs.EventBrushRemoved, evts[0].Type)

	assert.False(t, b.Remove())
	assert.ErrorIs(t, b.SetFill(color.NRGBA{}), ErrBrushRemoved)
	assert.ErrorIs(t, b.SetShape(shape.KindBox), ErrBrushRemoved)
	assert.ErrorIs(t, b.SetFillImage("a.png"), ErrBrushRemoved)
	_, ok := FindBrush(w, "b1")
	assert.False(t, ok)
}

func TestRemoteBrushEmitsNothing(t *testing.T) {
	w, _ := newWorld(t)
	opts := DefaultBrushOptions()
	opts.ID = "remote"
	b, err := SpawnBrush(w, opts)
	require.NoError(t, err)

	require.NoError(t, b.SetFill(color.NRGBA{A: 0xff}))
	require.NoError(t, b.SetShape(shape.KindBox))
	require.True(t, b.Remove())
	assert.Empty(t, brushEvents(w))
}

func TestSetFillImageRequests(t *testing.T) {
	w, _ := newWorld(t)
	b, err := SpawnBrush(w, ownedOptions("b1"))
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetFillImage("   "), ErrEmptyImageRef)
	require.NoError(t, b.SetFillImage(" a.png "))
	first, ok := ecs.Get(w, b.Entity(), component.FillImageRequestComponent)
	require.True(t, ok)
	assert.Equal(t, "a.png", first.Ref)
	assert.False(t, first.Quiet)

	require.NoError(t, b.SetFillImage("b.png"))
	second, _ := ecs.Get(w, b.Entity(), component.FillImageRequestComponent)
	assert.Greater(t, second.Token, first.Token)

	// setting a color cancels the pending load
	require.NoError(t, b.SetFill(DefaultFill))
	assert.False(t, ecs.Has(w, b.Entity(), component.FillImageRequestComponent))
}

func TestSpawnAndRemovePlanes(t *testing.T) {
	w, solver := newWorld(t)
	planes, err := SpawnPlanes(w, 800, 600)
	require.NoError(t, err)
	require.Len(t, planes, 4)
	assert.Equal(t, 4, solver.ShapeCount(solver.StaticBody()))

	for _, id := range solver.Shapes(solver.StaticBody()) {
		f, _ := solver.ShapeFilter(id)
		assert.Equal(t, physics.FilterFor(physics.CategoryPlanes), f)
		assert.False(t, f.Collides(f))
	}

	assert.Equal(t, 4, RemovePlanes(w))
	assert.Zero(t, solver.ShapeCount(solver.StaticBody()))
}
