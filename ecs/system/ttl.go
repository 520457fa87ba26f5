package system

import (
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
)

// TTLSystem decrements frame-based TTL components and despawns entities when
// the TTL reaches zero.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TTLComponent, func(e ecs.Entity, ttl component.TTL) {
		if ttl.Frames > 1 {
			ttl.Frames--
			_ = ecs.Add(w, e, component.TTLComponent, ttl)
			return
		}

		entity.Despawn(w, e)
	})
}
