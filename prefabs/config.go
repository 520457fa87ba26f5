package prefabs

import (
	"fmt"

	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
)

// Options returns spawn options for a local brush. Zero fields keep the
// entity package defaults.
func (s *BrushSpec) Options() (entity.BrushOptions, error) {
	opts := entity.DefaultBrushOptions()
	opts.Owned = true
	if s == nil {
		return opts, nil
	}
	if s.Shape != "" {
		kind, err := shape.ParseKind(s.Shape)
		if err != nil {
			return opts, fmt.Errorf("prefabs: brush: %w", err)
		}
		opts.Shape = kind
	}
	opts.Fill = s.Fill.Or(opts.Fill)
	opts.Stroke = s.Stroke.Or(opts.Stroke)
	if s.Mass > 0 {
		opts.Mass = s.Mass
	}
	if s.AngularVelocity != 0 {
		opts.AngularVelocity = s.AngularVelocity
	}
	if s.GraceDelay > 0 {
		opts.GraceDelay = s.GraceDelay
	}
	return opts, nil
}

// SpreadMode parses the particle launch spread; empty means uniform.
func (s *ParticlesSpec) SpreadMode() (entity.Spread, error) {
	if s == nil {
		return entity.SpreadUniform, nil
	}
	return entity.ParseSpread(s.Spread)
}

func (s *WorldSpec) SpaceConfig() physics.SpaceConfig {
	if s == nil {
		return physics.SpaceConfig{}
	}
	return physics.SpaceConfig{
		Gravity:    physics.Vec{X: s.Gravity.X, Y: s.Gravity.Y},
		Iterations: s.Iterations,
		Damping:    s.Damping,
	}
}
