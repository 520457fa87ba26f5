package main

import (
	"fmt"

	"github.com/milk9111/brushtoy/ecs/system"
	"github.com/milk9111/brushtoy/prefabs"
)

func deformationConfig(s *prefabs.BrushSpec) system.DeformationConfig {
	cfg := system.DefaultDeformationConfig()
	if s == nil {
		return cfg
	}
	if s.Deformation.K > 0 {
		cfg.K = s.Deformation.K
	}
	if s.Deformation.Max > 0 {
		cfg.Max = s.Deformation.Max
	}
	return cfg
}

func particleConfig(s *prefabs.ParticlesSpec) (system.ParticleConfig, error) {
	cfg := system.DefaultParticleConfig()
	if s == nil {
		return cfg, nil
	}
	spread, err := s.SpreadMode()
	if err != nil {
		return cfg, fmt.Errorf("particle config: %w", err)
	}
	if s.MaxParticles > 0 {
		cfg.MaxParticles = s.MaxParticles
	}
	if s.Speed > 0 {
		cfg.Speed = s.Speed
	}
	if s.Radius > 0 {
		cfg.Radius = s.Radius
	}
	if s.Mass > 0 {
		cfg.Mass = s.Mass
	}
	cfg.Spread = spread
	cfg.Lifetime = max(s.Lifetime, 0)
	return cfg, nil
}

// renderConfig merges the world and particle appearance settings.
func renderConfig(world *prefabs.WorldSpec, particles *prefabs.ParticlesSpec) system.RenderConfig {
	cfg := system.DefaultRenderConfig()
	if world != nil {
		cfg.Background = world.Background.Or(cfg.Background)
		cfg.PlaneColor = world.PlaneColor.Or(cfg.PlaneColor)
		if world.StrokeWidth > 0 {
			cfg.StrokeWidth = world.StrokeWidth
		}
		if world.BlurRadius > 0 {
			cfg.BlurRadius = world.BlurRadius
		}
	}
	if particles != nil {
		cfg.ParticleColor = particles.Color.Or(cfg.ParticleColor)
		if particles.DrawRadius > 0 {
			cfg.ParticleRadius = particles.DrawRadius
		}
	}
	return cfg
}
