package system

import (
	"math"

	"github.com/milk9111/brushtoy/common"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
	"go.uber.org/zap"
)

// DeformationConfig tunes how strongly speed inflates a brush.
type DeformationConfig struct {
	K   float64
	Max float64
}

func DefaultDeformationConfig() DeformationConfig {
	return DeformationConfig{K: 0.005, Max: 2}
}

// DeformationFactor maps a velocity to a scale in [1, max]. It uses the
// signed sum of the components, so motion along the anti-diagonal cancels.
func DeformationFactor(v physics.Vec, k, max float64) float64 {
	if max < 1 {
		max = 1
	}
	f := math.Abs((v.X + v.Y) * k)
	if math.IsNaN(f) {
		return 1
	}
	return common.Clamp(f, 1, max)
}

// DeformationSystem scales every brush by its deformation factor. Polygon
// brushes also get their live vertices rewritten and pushed to the solver;
// circles only scale visually.
type DeformationSystem struct {
	cfg DeformationConfig
	log *zap.Logger
}

func NewDeformationSystem(cfg DeformationConfig, log *zap.Logger) *DeformationSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeformationSystem{cfg: cfg, log: log}
}

func (s *DeformationSystem) SetConfig(cfg DeformationConfig) {
	s.cfg = cfg
}

func (s *DeformationSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	solver := w.Solver()

	for _, e := range w.Query(component.BrushComponent, component.GeometryComponent) {
		geom, _ := ecs.Get(w, e, component.GeometryComponent)
		if geom.Shape == nil {
			continue
		}
		m, _ := ecs.Get(w, e, component.MotionComponent)
		f := DeformationFactor(physics.Vec{X: m.VX, Y: m.VY}, s.cfg.K, s.cfg.Max)

		if tr, ok := ecs.Get(w, e, component.TransformComponent); ok {
			tr.ScaleX, tr.ScaleY = f, f
			_ = ecs.Add(w, e, component.TransformComponent, tr)
		}

		if len(geom.Base) > 0 {
			geom.Live = shape.ScaleVertices(geom.Live, geom.Base, f)
			if solver != nil {
				if err := solver.SetVertices(geom.ShapeID, geom.Live); err != nil {
					s.log.Debug("set vertices failed", zap.Stringer("entity", e), zap.Error(err))
				}
			}
		}
		geom.Factor = f
		geom.Metrics = geom.Shape.Metrics(geom.Live)
		_ = ecs.Add(w, e, component.GeometryComponent, geom)
	}
}
