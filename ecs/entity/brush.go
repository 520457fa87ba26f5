package entity

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/milk9111/brushtoy/common"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
)

var (
	ErrBrushRemoved   = errors.New("entity: brush removed")
	ErrDuplicateBrush = errors.New("entity: duplicate brush id")
	ErrEmptyImageRef  = errors.New("entity: empty image reference")
)

const (
	DefaultBrushMass            = 100.0
	DefaultBrushAngularVelocity = 1.0
)

var (
	DefaultFill   = color.NRGBA{B: 0xff, A: 0xff}
	DefaultStroke = color.NRGBA{R: 0xff, A: 0xff}
)

var imageTokens atomic.Uint64

// BrushOptions configures SpawnBrush. Use DefaultBrushOptions as a base;
// zero ID, Shape, Mass and GraceDelay fall back to their defaults.
type BrushOptions struct {
	ID              string
	X, Y            float64
	Angle           float64
	AngularVelocity float64
	Owned           bool
	Fill            color.NRGBA
	Stroke          color.NRGBA
	Shape           shape.Kind
	FillImage       string
	Mass            float64
	GraceDelay      float64
}

func DefaultBrushOptions() BrushOptions {
	return BrushOptions{
		AngularVelocity: DefaultBrushAngularVelocity,
		Fill:            DefaultFill,
		Stroke:          DefaultStroke,
		Shape:           shape.KindCircle,
		Mass:            DefaultBrushMass,
		GraceDelay:      DefaultGraceDelay,
	}
}

// Brush is a handle to a brush entity. It goes stale once the brush is
// removed; every mutator then returns ErrBrushRemoved.
type Brush struct {
	w  *ecs.World
	e  ecs.Entity
	id string
}

// Frame is everything a renderer needs to draw a brush for one frame.
type Frame struct {
	X, Y         float64
	Rotation     float64
	Scale        float64
	Shape        shape.Shape
	Fill         color.NRGBA
	Stroke       color.NRGBA
	FillImage    image.Image
	FillImageRef string
}

// SpawnBrush creates a brush body in the solver and its entity.
func SpawnBrush(w *ecs.World, opts BrushOptions) (*Brush, error) {
	solver := w.Solver()
	if solver == nil {
		return nil, ErrNoSolver
	}
	kind := opts.Shape
	if kind == 0 {
		kind = shape.KindCircle
	}
	if _, err := shape.For(kind); err != nil {
		return nil, fmt.Errorf("brush: %w", err)
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := FindBrush(w, id); exists {
		return nil, fmt.Errorf("brush %s: %w", id, ErrDuplicateBrush)
	}
	mass := opts.Mass
	if mass <= 0 {
		mass = DefaultBrushMass
	}
	grace := opts.GraceDelay
	if grace <= 0 {
		grace = DefaultGraceDelay
	}

	e := w.CreateEntity()
	bodyID := solver.CreateBody(mass, physics.Vec{X: opts.X, Y: opts.Y}, opts.Angle)
	solver.SetAngularVelocity(bodyID, opts.AngularVelocity)

	fail := func(what string, err error) (*Brush, error) {
		solver.RemoveBody(bodyID)
		w.DestroyEntity(e)
		return nil, fmt.Errorf("brush: %s: %w", what, err)
	}

	if err := ecs.Add(w, e, component.BrushComponent, component.Brush{
		ID:         id,
		Owned:      opts.Owned,
		GraceDelay: grace,
	}); err != nil {
		return fail("add brush", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: bodyID, Mass: mass}); err != nil {
		return fail("add physics body", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{
		X:        opts.X,
		Y:        opts.Y,
		ScaleX:   1,
		ScaleY:   1,
		Rotation: opts.Angle,
	}); err != nil {
		return fail("add transform", err)
	}
	if err := ecs.Add(w, e, component.MotionComponent, component.Motion{Angular: opts.AngularVelocity}); err != nil {
		return fail("add motion", err)
	}
	if err := ecs.Add(w, e, component.MaterialComponent, component.Material{
		Fill:   opts.Fill,
		Stroke: opts.Stroke,
	}); err != nil {
		return fail("add material", err)
	}
	if err := RebuildShape(w, e, kind); err != nil {
		return fail("build shape", err)
	}

	b := &Brush{w: w, e: e, id: id}
	if ref := strings.TrimSpace(opts.FillImage); ref != "" {
		_ = b.requestImage(ref, true)
	}
	b.emit(ecs.EventBrushSpawned, kind.String())
	return b, nil
}

// FindBrush returns the live brush with the given id.
func FindBrush(w *ecs.World, id string) (*Brush, bool) {
	for _, e := range w.Query(component.BrushComponent) {
		br, _ := ecs.Get(w, e, component.BrushComponent)
		if br.ID == id {
			return &Brush{w: w, e: e, id: id}, true
		}
	}
	return nil, false
}

// Brushes returns every live brush in entity order.
func Brushes(w *ecs.World) []*Brush {
	ents := w.Query(component.BrushComponent)
	out := make([]*Brush, 0, len(ents))
	for _, e := range ents {
		br, _ := ecs.Get(w, e, component.BrushComponent)
		out = append(out, &Brush{w: w, e: e, id: br.ID})
	}
	return out
}

// BrushFor wraps an existing brush entity.
func BrushFor(w *ecs.World, e ecs.Entity) (*Brush, bool) {
	br, ok := ecs.Get(w, e, component.BrushComponent)
	if !ok {
		return nil, false
	}
	return &Brush{w: w, e: e, id: br.ID}, true
}

func (b *Brush) ID() string         { return b.id }
func (b *Brush) Entity() ecs.Entity { return b.e }

// Alive reports whether the brush is still in the world.
func (b *Brush) Alive() bool {
	return b != nil && ecs.Has(b.w, b.e, component.BrushComponent)
}

func (b *Brush) Owned() bool {
	br, ok := ecs.Get(b.w, b.e, component.BrushComponent)
	return ok && br.Owned
}

// Kind returns the current shape kind, or 0 once removed.
func (b *Brush) Kind() shape.Kind {
	geom, ok := ecs.Get(b.w, b.e, component.GeometryComponent)
	if !ok || geom.Shape == nil {
		return 0
	}
	return geom.Shape.Kind()
}

// SetFill replaces the fill color, clears any fill image and cancels a
// pending image load.
func (b *Brush) SetFill(c color.NRGBA) error {
	mat, ok := ecs.Get(b.w, b.e, component.MaterialComponent)
	if !ok {
		return ErrBrushRemoved
	}
	mat.Fill = c
	mat.FillImage = nil
	mat.FillImageRef = ""
	if err := ecs.Add(b.w, b.e, component.MaterialComponent, mat); err != nil {
		return fmt.Errorf("brush %s: set fill: %w", b.id, err)
	}
	ecs.Remove(b.w, b.e, component.FillImageRequestComponent)
	b.emit(ecs.EventFillChanged, common.HexColor(c))
	return nil
}

// SetStroke replaces the outline color.
func (b *Brush) SetStroke(c color.NRGBA) error {
	mat, ok := ecs.Get(b.w, b.e, component.MaterialComponent)
	if !ok {
		return ErrBrushRemoved
	}
	mat.Stroke = c
	if err := ecs.Add(b.w, b.e, component.MaterialComponent, mat); err != nil {
		return fmt.Errorf("brush %s: set stroke: %w", b.id, err)
	}
	b.emit(ecs.EventStrokeChanged, common.HexColor(c))
	return nil
}

// SetFillImage starts loading ref. Nothing about the brush changes until the
// load completes on a later tick; a failed load changes nothing at all.
func (b *Brush) SetFillImage(ref string) error {
	if !b.Alive() {
		return ErrBrushRemoved
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrEmptyImageRef
	}
	return b.requestImage(ref, false)
}

func (b *Brush) requestImage(ref string, quiet bool) error {
	req := component.FillImageRequest{Ref: ref, Token: imageTokens.Add(1), Quiet: quiet}
	if err := ecs.Add(b.w, b.e, component.FillImageRequestComponent, req); err != nil {
		return fmt.Errorf("brush %s: set fill image: %w", b.id, err)
	}
	return nil
}

// ApplyFillImage installs a decoded image. It is called by the image loading
// system once a request completes.
func (b *Brush) ApplyFillImage(ref string, img image.Image, quiet bool) error {
	mat, ok := ecs.Get(b.w, b.e, component.MaterialComponent)
	if !ok {
		return ErrBrushRemoved
	}
	mat.FillImage = img
	mat.FillImageRef = ref
	if err := ecs.Add(b.w, b.e, component.MaterialComponent, mat); err != nil {
		return fmt.Errorf("brush %s: apply fill image: %w", b.id, err)
	}
	if !quiet {
		b.emit(ecs.EventFillImageChanged, ref)
	}
	return nil
}

// SetShape rebuilds the collision shape as kind.
func (b *Brush) SetShape(kind shape.Kind) error {
	if !b.Alive() {
		return ErrBrushRemoved
	}
	if err := RebuildShape(b.w, b.e, kind); err != nil {
		return fmt.Errorf("brush %s: %w", b.id, err)
	}
	b.emit(ecs.EventShapeChanged, kind.String())
	return nil
}

// SetMotion moves the body directly. Remote brushes follow their owner this
// way.
func (b *Brush) SetMotion(pos physics.Vec, angle float64, vel physics.Vec, angular float64) error {
	body, ok := ecs.Get(b.w, b.e, component.PhysicsBodyComponent)
	if !ok {
		return ErrBrushRemoved
	}
	solver := b.w.Solver()
	if solver == nil {
		return ErrNoSolver
	}
	solver.SetTransform(body.Body, pos, angle)
	solver.SetVelocity(body.Body, vel)
	solver.SetAngularVelocity(body.Body, angular)
	return nil
}

// Remove detaches the body from the solver and destroys the entity.
func (b *Brush) Remove() bool {
	if !b.Alive() {
		return false
	}
	owned := b.Owned()
	if !Despawn(b.w, b.e) {
		return false
	}
	if owned {
		b.w.Events().Push(ecs.Event{
			Type: ecs.EventBrushRemoved,
			Data: ecs.BrushEvent{Entity: b.e, BrushID: b.id},
		})
	}
	return true
}

// Frame returns the draw input for the brush.
func (b *Brush) Frame() (Frame, bool) {
	tr, ok := ecs.Get(b.w, b.e, component.TransformComponent)
	if !ok {
		return Frame{}, false
	}
	mat, _ := ecs.Get(b.w, b.e, component.MaterialComponent)
	geom, _ := ecs.Get(b.w, b.e, component.GeometryComponent)
	scale := tr.ScaleX
	if scale <= 0 {
		scale = 1
	}
	return Frame{
		X:            tr.X,
		Y:            tr.Y,
		Rotation:     tr.Rotation,
		Scale:        scale,
		Shape:        geom.Shape,
		Fill:         mat.Fill,
		Stroke:       mat.Stroke,
		FillImage:    mat.FillImage,
		FillImageRef: mat.FillImageRef,
	}, true
}

func (b *Brush) emit(t ecs.EventType, value string) {
	br, ok := ecs.Get(b.w, b.e, component.BrushComponent)
	if !ok || !br.Owned {
		return
	}
	b.w.Events().Push(ecs.Event{
		Type: t,
		Data: ecs.BrushEvent{Entity: b.e, BrushID: br.ID, Value: value},
	})
}
