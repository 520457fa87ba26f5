package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
)

var ErrUnknownSpread = errors.New("entity: unknown particle spread")

// Spread selects how a spawned particle's launch velocity is drawn.
type Spread uint8

const (
	// SpreadUniform launches at full speed in a uniformly random direction.
	SpreadUniform Spread = iota
	// SpreadAxisCosine draws each axis independently as speed*cos(pi*u).
	// Directions cluster on the diagonals and the magnitude varies.
	SpreadAxisCosine
)

// ParseSpread accepts "uniform" (or empty) and "axis_cosine"/"axis-cosine".
func ParseSpread(s string) (Spread, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "uniform":
		return SpreadUniform, nil
	case "axis_cosine":
		return SpreadAxisCosine, nil
	}
	return SpreadUniform, fmt.Errorf("%w: %q", ErrUnknownSpread, s)
}

func (s Spread) String() string {
	if s == SpreadAxisCosine {
		return "axis_cosine"
	}
	return "uniform"
}

// ParticleOptions describes one spawned particle.
type ParticleOptions struct {
	Position physics.Vec
	Velocity physics.Vec
	Radius   float64
	Mass     float64
	Seq      uint64
	// Lifetime in ticks; zero keeps the particle until it is evicted.
	Lifetime int
}

// SpawnParticle creates a small dynamic circle in the PARTICLES category. It
// collides with planes and brushes but never with other particles.
func SpawnParticle(w *ecs.World, opts ParticleOptions) (ecs.Entity, error) {
	solver := w.Solver()
	if solver == nil {
		return 0, ErrNoSolver
	}
	filter := physics.FilterFor(physics.CategoryParticles)

	body := solver.CreateBody(opts.Mass, opts.Position, 0)
	if _, err := solver.AttachShape(body, physics.ShapeDef{
		Type:   physics.ShapeCircle,
		Radius: opts.Radius,
		Filter: filter,
	}); err != nil {
		solver.RemoveBody(body)
		return 0, fmt.Errorf("particle: attach shape: %w", err)
	}
	solver.SetVelocity(body, opts.Velocity)

	e := w.CreateEntity()
	fail := func(what string, err error) (ecs.Entity, error) {
		solver.RemoveBody(body)
		w.DestroyEntity(e)
		return 0, fmt.Errorf("particle: %s: %w", what, err)
	}
	if err := ecs.Add(w, e, component.ParticleComponent, component.Particle{Seq: opts.Seq}); err != nil {
		return fail("add particle", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: body, Mass: opts.Mass}); err != nil {
		return fail("add physics body", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{
		X: opts.Position.X, Y: opts.Position.Y, ScaleX: 1, ScaleY: 1,
	}); err != nil {
		return fail("add transform", err)
	}
	if err := ecs.Add(w, e, component.MotionComponent, component.Motion{VX: opts.Velocity.X, VY: opts.Velocity.Y}); err != nil {
		return fail("add motion", err)
	}
	if err := ecs.Add(w, e, component.CollisionLayerComponent, component.CollisionLayer{
		Category: filter.Categories,
		Mask:     filter.Mask,
	}); err != nil {
		return fail("add collision layer", err)
	}
	if opts.Lifetime > 0 {
		if err := ecs.Add(w, e, component.TTLComponent, component.TTL{Frames: opts.Lifetime}); err != nil {
			return fail("add ttl", err)
		}
	}
	return e, nil
}
