package system

import (
	"math"
	"math/rand/v2"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"go.uber.org/zap"
)

// ParticleConfig tunes the particle spawner.
type ParticleConfig struct {
	MaxParticles int
	Speed        float64
	Radius       float64
	Mass         float64
	Spread       entity.Spread
	// Lifetime in ticks; zero keeps particles until evicted.
	Lifetime int
}

func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		MaxParticles: 100,
		Speed:        140,
		Radius:       3,
		Mass:         50,
	}
}

// ParticleSystem spawns one particle per contact point reported by the last
// solver step and keeps at most MaxParticles alive, evicting the oldest.
type ParticleSystem struct {
	cfg  ParticleConfig
	rng  *rand.Rand
	log  *zap.Logger
	pool []ecs.Entity
	seq  uint64
}

func NewParticleSystem(cfg ParticleConfig, rng *rand.Rand, log *zap.Logger) *ParticleSystem {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ParticleSystem{cfg: cfg, rng: rng, log: log}
}

func (ps *ParticleSystem) SetConfig(cfg ParticleConfig) {
	ps.cfg = cfg
}

// Pool returns the live particles, oldest first.
func (ps *ParticleSystem) Pool() []ecs.Entity {
	return append([]ecs.Entity(nil), ps.pool...)
}

func (ps *ParticleSystem) Len() int {
	return len(ps.pool)
}

func (ps *ParticleSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	solver := w.Solver()
	if solver == nil {
		return
	}

	ps.prune(w)
	ps.evict(w)

	for _, c := range solver.Contacts() {
		if !solver.HasBody(c.A) || !solver.HasBody(c.B) {
			continue
		}
		if _, err := ps.Spawn(w, c.Point); err != nil {
			ps.log.Warn("spawn particle", zap.Error(err))
		}
	}
}

// Spawn creates one particle at pos and enforces the capacity.
func (ps *ParticleSystem) Spawn(w *ecs.World, pos physics.Vec) (ecs.Entity, error) {
	ps.seq++
	e, err := entity.SpawnParticle(w, entity.ParticleOptions{
		Position: pos,
		Velocity: ps.velocity(),
		Radius:   ps.cfg.Radius,
		Mass:     ps.cfg.Mass,
		Seq:      ps.seq,
		Lifetime: ps.cfg.Lifetime,
	})
	if err != nil {
		return 0, err
	}
	ps.pool = append(ps.pool, e)
	ps.evict(w)
	return e, nil
}

func (ps *ParticleSystem) velocity() physics.Vec {
	speed := ps.cfg.Speed
	if ps.cfg.Spread == entity.SpreadAxisCosine {
		return physics.Vec{
			X: speed * math.Cos(math.Pi*ps.rng.Float64()),
			Y: speed * math.Cos(math.Pi*ps.rng.Float64()),
		}
	}
	angle := ps.rng.Float64() * 2 * math.Pi
	return physics.Vec{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)}
}

func (ps *ParticleSystem) evict(w *ecs.World) {
	limit := max(ps.cfg.MaxParticles, 0)
	for len(ps.pool) > limit {
		oldest := ps.pool[0]
		ps.pool[0] = 0
		ps.pool = ps.pool[1:]
		entity.Despawn(w, oldest)
	}
}

// prune drops particles another system already despawned.
func (ps *ParticleSystem) prune(w *ecs.World) {
	kept := ps.pool[:0]
	for _, e := range ps.pool {
		if w.IsAlive(e) {
			kept = append(kept, e)
		}
	}
	clear(ps.pool[len(kept):])
	ps.pool = kept
}
