package system

import (
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
)

// clock drift allowance when comparing accumulated step times
const graceEpsilon = 1e-9

// ContactGraceSystem switches freshly built brush shapes from the inert mask
// to the full brush mask once their grace delay has elapsed. The full mask
// is applied in a single filter write.
type ContactGraceSystem struct{}

func NewContactGraceSystem() *ContactGraceSystem {
	return &ContactGraceSystem{}
}

func (s *ContactGraceSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	solver := w.Solver()
	if solver == nil {
		return
	}
	now := w.Clock().Now()

	for _, e := range w.Query(component.ContactGraceComponent) {
		grace, _ := ecs.Get(w, e, component.ContactGraceComponent)
		if now+graceEpsilon < grace.ReadyAt {
			continue
		}
		ecs.Remove(w, e, component.ContactGraceComponent)

		geom, ok := ecs.Get(w, e, component.GeometryComponent)
		if !ok || geom.ShapeID == 0 {
			continue
		}
		category := physics.CategoryBrush
		if layer, ok := ecs.Get(w, e, component.CollisionLayerComponent); ok && layer.Category != physics.CategoryNone {
			category = layer.Category
		}
		filter := physics.FilterFor(category)
		solver.SetFilter(geom.ShapeID, filter)
		_ = ecs.Add(w, e, component.CollisionLayerComponent, component.CollisionLayer{
			Category: filter.Categories,
			Mask:     filter.Mask,
		})
	}
}
