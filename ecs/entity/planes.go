package entity

import (
	"fmt"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
)

const planeThickness = 2.0

// SpawnPlanes walls in a width x height board with four static segments in
// the PLANES category.
func SpawnPlanes(w *ecs.World, width, height float64) ([]ecs.Entity, error) {
	solver := w.Solver()
	if solver == nil {
		return nil, ErrNoSolver
	}
	corners := []physics.Vec{{X: 0, Y: 0}, {X: width, Y: 0}, {X: width, Y: height}, {X: 0, Y: height}}
	filter := physics.FilterFor(physics.CategoryPlanes)

	out := make([]ecs.Entity, 0, len(corners))
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		id, err := solver.AttachShape(solver.StaticBody(), physics.ShapeDef{
			Type:       physics.ShapeSegment,
			A:          a,
			B:          b,
			Radius:     planeThickness,
			Filter:     filter,
			Friction:   1,
			Elasticity: 0.5,
		})
		if err != nil {
			return out, fmt.Errorf("planes: attach segment %d: %w", i, err)
		}
		e := w.CreateEntity()
		if err := ecs.Add(w, e, component.PlaneComponent, component.Plane{Shape: id, A: a, B: b}); err != nil {
			solver.DetachShape(id)
			w.DestroyEntity(e)
			return out, fmt.Errorf("planes: add plane: %w", err)
		}
		if err := ecs.Add(w, e, component.CollisionLayerComponent, component.CollisionLayer{
			Category: filter.Categories,
			Mask:     filter.Mask,
		}); err != nil {
			return out, fmt.Errorf("planes: add collision layer: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// RemovePlanes detaches every plane segment from the static body.
func RemovePlanes(w *ecs.World) int {
	solver := w.Solver()
	n := 0
	for _, e := range w.Query(component.PlaneComponent) {
		p, _ := ecs.Get(w, e, component.PlaneComponent)
		if solver != nil {
			solver.DetachShape(p.Shape)
		}
		w.DestroyEntity(e)
		n++
	}
	return n
}
