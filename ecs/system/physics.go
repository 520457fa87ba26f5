package system

import (
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"go.uber.org/zap"
)

const DefaultTPS = 60

// PhysicsSystem advances the solver by one fixed step, moves the world clock
// and mirrors body state into Transform and Motion.
type PhysicsSystem struct {
	dt  float64
	log *zap.Logger
}

func NewPhysicsSystem(tps int, log *zap.Logger) *PhysicsSystem {
	if tps <= 0 {
		tps = DefaultTPS
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PhysicsSystem{dt: 1 / float64(tps), log: log}
}

// Step returns the fixed step length in seconds.
func (ps *PhysicsSystem) Step() float64 {
	return ps.dt
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	solver := w.Solver()
	if solver == nil {
		return
	}

	solver.Step(ps.dt)
	w.Clock().Advance(ps.dt)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	solver := w.Solver()
	for _, e := range w.Query(component.PhysicsBodyComponent) {
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		state, ok := solver.Body(body.Body)
		if !ok {
			// body vanished underneath the entity
			ps.log.Debug("dropping entity without body", zap.Stringer("entity", e))
			w.DestroyEntity(e)
			continue
		}

		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			tr = component.Transform{ScaleX: 1, ScaleY: 1}
		}
		tr.X = state.Position.X
		tr.Y = state.Position.Y
		tr.Rotation = state.Angle
		_ = ecs.Add(w, e, component.TransformComponent, tr)

		m, _ := ecs.Get(w, e, component.MotionComponent)
		m.VX = state.Velocity.X
		m.VY = state.Velocity.Y
		_ = ecs.Add(w, e, component.MotionComponent, m)
	}
}
