package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/ecs/render"
)

// RenderConfig controls how brushes, particles and planes are drawn.
type RenderConfig struct {
	Background     color.NRGBA
	PlaneColor     color.NRGBA
	StrokeWidth    float32
	BlurRadius     float64
	ParticleRadius float32
	ParticleColor  color.NRGBA
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Background:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		PlaneColor:     color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		StrokeWidth:    3,
		BlurRadius:     4,
		ParticleRadius: 2,
		ParticleColor:  color.NRGBA{R: 0xff, B: 0xaa, A: 0xff},
	}
}

type renderTargets struct {
	container *ebiten.Image
	mask      *ebiten.Image
	blur      *ebiten.Image
}

// RenderSystem draws each brush into an offscreen container (fill, then
// stroke), blurs the container onto the screen under the brush transform,
// then draws particles on top.
type RenderSystem struct {
	cfg      RenderConfig
	textures *render.Textures
	targets  map[int]*renderTargets
	taps     []BlurTap
}

func NewRenderSystem(cfg RenderConfig) *RenderSystem {
	return &RenderSystem{
		cfg:      cfg,
		textures: render.NewTextures(),
		targets:  make(map[int]*renderTargets),
		taps:     BlurTaps(cfg.BlurRadius),
	}
}

func (r *RenderSystem) SetConfig(cfg RenderConfig) {
	r.cfg = cfg
	r.taps = BlurTaps(cfg.BlurRadius)
}

func (r *RenderSystem) Config() RenderConfig {
	return r.cfg
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(r.cfg.Background)

	for _, e := range w.Query(component.PlaneComponent) {
		p, _ := ecs.Get(w, e, component.PlaneComponent)
		vector.StrokeLine(screen, float32(p.A.X), float32(p.A.Y), float32(p.B.X), float32(p.B.Y), 4, r.cfg.PlaneColor, true)
	}

	live := make(map[string]struct{})
	for _, b := range entity.Brushes(w) {
		f, ok := b.Frame()
		if !ok || f.Shape == nil {
			continue
		}
		if f.FillImage != nil {
			live[f.FillImageRef] = struct{}{}
		}
		r.drawBrush(screen, f)
	}
	r.textures.Retain(live)

	for _, e := range w.Query(component.ParticleComponent, component.TransformComponent) {
		tr, _ := ecs.Get(w, e, component.TransformComponent)
		vector.FillCircle(screen, float32(tr.X), float32(tr.Y), r.cfg.ParticleRadius, r.cfg.ParticleColor, true)
	}
}

func (r *RenderSystem) drawBrush(screen *ebiten.Image, f entity.Frame) {
	extent := f.Shape.Metrics(nil).BoundingRadius
	pad := float64(r.cfg.StrokeWidth) + 2*r.cfg.BlurRadius + 2
	size := int(math.Ceil(2 * (extent + pad)))
	t := r.target(size)
	c := float32(size) / 2

	t.container.Clear()
	if tex := r.textures.Get(f.FillImageRef, f.FillImage); tex != nil {
		t.mask.Clear()
		f.Shape.Trace(&fillPen{dst: t.mask, cx: c, cy: c, clr: color.White})
		bw, bh := tex.Bounds().Dx(), tex.Bounds().Dy()
		s := CoverScale(bw, bh, 2*extent)
		op := &ebiten.DrawImageOptions{Blend: ebiten.BlendSourceIn, Filter: ebiten.FilterLinear}
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(float64(c)-float64(bw)*s/2, float64(c)-float64(bh)*s/2)
		t.mask.DrawImage(tex, op)
		t.container.DrawImage(t.mask, nil)
	} else {
		f.Shape.Trace(&fillPen{dst: t.container, cx: c, cy: c, clr: f.Fill})
	}
	f.Shape.Trace(&strokePen{dst: t.container, cx: c, cy: c, clr: f.Stroke, width: r.cfg.StrokeWidth})

	t.blur.Clear()
	for _, tap := range r.taps {
		op := &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter}
		op.GeoM.Translate(tap.DX, tap.DY)
		op.ColorScale.ScaleAlpha(tap.Weight)
		t.blur.DrawImage(t.container, op)
	}

	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Translate(-float64(c), -float64(c))
	op.GeoM.Scale(f.Scale, f.Scale)
	op.GeoM.Rotate(f.Rotation)
	op.GeoM.Translate(f.X, f.Y)
	screen.DrawImage(t.blur, op)
}

func (r *RenderSystem) target(size int) *renderTargets {
	if t, ok := r.targets[size]; ok {
		return t
	}
	t := &renderTargets{
		container: ebiten.NewImage(size, size),
		mask:      ebiten.NewImage(size, size),
		blur:      ebiten.NewImage(size, size),
	}
	r.targets[size] = t
	return t
}

// BlurTap is one weighted offset copy of the blur kernel.
type BlurTap struct {
	DX, DY float64
	Weight float32
}

// BlurTaps returns a 3x3 binomial kernel spread over radius. The weights
// sum to one.
func BlurTaps(radius float64) []BlurTap {
	if radius <= 0 {
		return []BlurTap{{Weight: 1}}
	}
	step := radius / 2
	k := [3]float32{1, 2, 1}
	taps := make([]BlurTap, 0, 9)
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			taps = append(taps, BlurTap{
				DX:     float64(i) * step,
				DY:     float64(j) * step,
				Weight: k[i+1] * k[j+1] / 16,
			})
		}
	}
	return taps
}

// CoverScale returns the scale that makes a w x h image cover a square of
// side size.
func CoverScale(w, h int, size float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return math.Max(size/float64(w), size/float64(h))
}

type fillPen struct {
	dst    *ebiten.Image
	cx, cy float32
	clr    color.Color
}

func (p *fillPen) Circle(radius float64) {
	vector.FillCircle(p.dst, p.cx, p.cy, float32(radius), p.clr, true)
}

func (p *fillPen) Rect(width, height float64) {
	w, h := float32(width), float32(height)
	vector.FillRect(p.dst, p.cx-w/2, p.cy-h/2, w, h, p.clr, true)
}

type strokePen struct {
	dst    *ebiten.Image
	cx, cy float32
	clr    color.Color
	width  float32
}

func (p *strokePen) Circle(radius float64) {
	vector.StrokeCircle(p.dst, p.cx, p.cy, float32(radius), p.width, p.clr, true)
}

func (p *strokePen) Rect(width, height float64) {
	w, h := float32(width), float32(height)
	vector.StrokeRect(p.dst, p.cx-w/2, p.cy-h/2, w, h, p.width, p.clr, true)
}
