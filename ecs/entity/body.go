package entity

import (
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
)

// Despawn removes the solver body of e, shapes included, and then destroys
// the entity. It is the only way bodies leave the world.
func Despawn(w *ecs.World, e ecs.Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok {
		if solver := w.Solver(); solver != nil {
			solver.RemoveBody(body.Body)
		}
	}
	return w.DestroyEntity(e)
}
