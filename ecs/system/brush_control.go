package system

import (
	"image/color"
	"math"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"go.uber.org/zap"
)

// BrushControlConfig drives the local user's brush edits.
type BrushControlConfig struct {
	Spawn    entity.BrushOptions
	Palette  []color.NRGBA
	ImageRef string
	TPS      int
}

// DefaultPalette is cycled by the fill and stroke keys.
var DefaultPalette = []color.NRGBA{
	{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xa0, B: 0x50, A: 0xff},
	{R: 0xff, G: 0xc0, B: 0x00, A: 0xff},
	{R: 0x80, G: 0x00, B: 0x80, A: 0xff},
	{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
}

// BrushControlSystem turns sampled Input into brush operations: pressing on
// empty board spawns an owned brush, pressing on an owned brush selects and
// drags it, and the shape, color, image and delete keys act on the selection.
// Remote brushes are never picked.
type BrushControlSystem struct {
	cfg         BrushControlConfig
	fillIndex   int
	strokeIndex int
	log         *zap.Logger
}

func NewBrushControlSystem(cfg BrushControlConfig, log *zap.Logger) *BrushControlSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}
	if cfg.TPS <= 0 {
		cfg.TPS = DefaultTPS
	}
	return &BrushControlSystem{cfg: cfg, log: log}
}

func (s *BrushControlSystem) SetConfig(cfg BrushControlConfig) {
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}
	if cfg.TPS <= 0 {
		cfg.TPS = DefaultTPS
	}
	s.cfg = cfg
}

func (s *BrushControlSystem) Config() BrushControlConfig {
	return s.cfg
}

func (s *BrushControlSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	e, ok := w.First(component.InputComponent)
	if !ok {
		return
	}
	in, _ := ecs.Get(w, e, component.InputComponent)
	cursor := physics.Vec{X: in.CursorX, Y: in.CursorY}

	if in.Press {
		s.press(w, cursor)
	}
	if b, ok := selectedBrush(w); ok {
		s.edit(w, b, in, cursor)
	}
}

func (s *BrushControlSystem) press(w *ecs.World, cursor physics.Vec) {
	clearSelection(w)
	if b, ok := BrushAt(w, cursor); ok {
		tr, _ := ecs.Get(w, b.Entity(), component.TransformComponent)
		_ = ecs.Add(w, b.Entity(), component.SelectedComponent, component.Selected{
			Dragging: true,
			LastX:    cursor.X,
			LastY:    cursor.Y,
			GrabDX:   tr.X - cursor.X,
			GrabDY:   tr.Y - cursor.Y,
		})
		return
	}

	opts := s.cfg.Spawn
	opts.ID = ""
	opts.Owned = true
	opts.X, opts.Y = cursor.X, cursor.Y
	b, err := entity.SpawnBrush(w, opts)
	if err != nil {
		s.log.Warn("spawn brush", zap.Error(err))
		return
	}
	s.log.Debug("spawned brush", zap.String("brush", b.ID()), zap.Stringer("shape", b.Kind()))
	_ = ecs.Add(w, b.Entity(), component.SelectedComponent, component.Selected{})
}

func (s *BrushControlSystem) edit(w *ecs.World, b *entity.Brush, in component.Input, cursor physics.Vec) {
	sel, _ := ecs.Get(w, b.Entity(), component.SelectedComponent)

	if sel.Dragging && in.Held {
		tr, _ := ecs.Get(w, b.Entity(), component.TransformComponent)
		m, _ := ecs.Get(w, b.Entity(), component.MotionComponent)
		tps := float64(s.cfg.TPS)
		vel := physics.Vec{X: (cursor.X - sel.LastX) * tps, Y: (cursor.Y - sel.LastY) * tps}
		pos := physics.Vec{X: cursor.X + sel.GrabDX, Y: cursor.Y + sel.GrabDY}
		if err := b.SetMotion(pos, tr.Rotation, vel, m.Angular); err != nil {
			s.log.Debug("drag brush", zap.String("brush", b.ID()), zap.Error(err))
		}
		sel.LastX, sel.LastY = cursor.X, cursor.Y
	}
	if in.Release || !in.Held {
		sel.Dragging = false
	}
	_ = ecs.Add(w, b.Entity(), component.SelectedComponent, sel)

	if in.Shape != 0 && in.Shape != b.Kind() {
		s.check(b, "set shape", b.SetShape(in.Shape))
	}
	if in.CycleFill {
		s.fillIndex = (s.fillIndex + 1) % len(s.cfg.Palette)
		s.check(b, "set fill", b.SetFill(s.cfg.Palette[s.fillIndex]))
	}
	if in.CycleStroke {
		s.strokeIndex = (s.strokeIndex + 1) % len(s.cfg.Palette)
		s.check(b, "set stroke", b.SetStroke(s.cfg.Palette[s.strokeIndex]))
	}
	if in.FillImage && s.cfg.ImageRef != "" {
		s.check(b, "set fill image", b.SetFillImage(s.cfg.ImageRef))
	}
	if in.Delete {
		b.Remove()
	}
}

func (s *BrushControlSystem) check(b *entity.Brush, what string, err error) {
	if err != nil {
		s.log.Warn(what, zap.String("brush", b.ID()), zap.Error(err))
	}
}

// BrushAt returns the topmost owned brush whose deformed bounding circle
// contains pt.
func BrushAt(w *ecs.World, pt physics.Vec) (*entity.Brush, bool) {
	brushes := entity.Brushes(w)
	for i := len(brushes) - 1; i >= 0; i-- {
		b := brushes[i]
		if !b.Owned() {
			continue
		}
		geom, ok := ecs.Get(w, b.Entity(), component.GeometryComponent)
		if !ok {
			continue
		}
		tr, _ := ecs.Get(w, b.Entity(), component.TransformComponent)
		r := geom.Metrics.BoundingRadius * math.Max(geom.Factor, 1)
		if math.Hypot(pt.X-tr.X, pt.Y-tr.Y) <= r {
			return b, true
		}
	}
	return nil, false
}

func selectedBrush(w *ecs.World) (*entity.Brush, bool) {
	e, ok := w.First(component.SelectedComponent, component.BrushComponent)
	if !ok {
		return nil, false
	}
	return entity.BrushFor(w, e)
}

func clearSelection(w *ecs.World) {
	for _, e := range w.Query(component.SelectedComponent) {
		ecs.Remove(w, e, component.SelectedComponent)
	}
}
