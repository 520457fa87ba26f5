package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
)

var (
	ErrNoSolver = errors.New("entity: world has no solver")
	ErrNotBrush = errors.New("entity: not a brush")
)

const (
	DefaultGraceDelay = 1.0

	brushFriction   = 0.7
	brushElasticity = 0.2
)

// RebuildShape replaces the collision shape of brush e with a fresh shape of
// kind. The kind is resolved before the solver is touched, so an unknown
// kind leaves the current shape attached. The new shape starts inert and a
// ContactGrace is scheduled to enable the full brush mask after the brush's
// grace delay.
func RebuildShape(w *ecs.World, e ecs.Entity, kind shape.Kind) error {
	s, err := shape.For(kind)
	if err != nil {
		return fmt.Errorf("rebuild shape: %w", err)
	}
	solver := w.Solver()
	if solver == nil {
		return ErrNoSolver
	}
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	if !ok || !solver.HasBody(body.Body) {
		return fmt.Errorf("rebuild shape: %w", ErrNotBrush)
	}

	def := s.Def()
	def.Filter = physics.InertFilter(physics.CategoryBrush)
	def.Friction = brushFriction
	def.Elasticity = brushElasticity

	var id physics.ShapeID
	geom, hadShape := ecs.Get(w, e, component.GeometryComponent)
	if hadShape && geom.ShapeID != 0 {
		id, err = solver.ReplaceShape(geom.ShapeID, def)
	} else {
		id, err = solver.AttachShape(body.Body, def)
	}
	if err != nil {
		return fmt.Errorf("rebuild shape %s: %w", kind, err)
	}

	base := s.BaseVertices()
	live := shape.ScaleVertices(nil, base, 1)
	geom = component.Geometry{
		Shape:   s,
		ShapeID: id,
		Base:    base,
		Live:    live,
		Factor:  1,
		Metrics: s.Metrics(live),
	}
	if err := ecs.Add(w, e, component.GeometryComponent, geom); err != nil {
		return fmt.Errorf("rebuild shape: add geometry: %w", err)
	}
	if err := ecs.Add(w, e, component.CollisionLayerComponent, component.CollisionLayer{
		Category: def.Filter.Categories,
		Mask:     def.Filter.Mask,
	}); err != nil {
		return fmt.Errorf("rebuild shape: add collision layer: %w", err)
	}

	delay := DefaultGraceDelay
	brush, isBrush := ecs.Get(w, e, component.BrushComponent)
	if isBrush {
		delay = brush.GraceDelay
	}
	if err := ecs.Add(w, e, component.ContactGraceComponent, component.ContactGrace{
		ReadyAt: w.Clock().Now() + delay,
	}); err != nil {
		return fmt.Errorf("rebuild shape: add contact grace: %w", err)
	}

	if tr, ok := ecs.Get(w, e, component.TransformComponent); ok {
		tr.ScaleX, tr.ScaleY = 1, 1
		_ = ecs.Add(w, e, component.TransformComponent, tr)
	}

	w.Events().Push(ecs.Event{
		Type: ecs.EventGeometryChanged,
		Data: ecs.BrushEvent{Entity: e, BrushID: brush.ID, Value: kind.String()},
	})
	return nil
}
