// Package shape holds the closed set of brush shape kinds. Every concern that
// depends on the kind (solver geometry, vertex scaling, drawing, metrics) is a
// method on Shape, so adding a kind means implementing all of them.
package shape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/brushtoy/physics"
)

var ErrUnknownKind = errors.New("shape: unknown kind")

// Kind is the categorical geometry type of a brush.
type Kind uint8

const (
	KindCircle Kind = iota + 1
	KindBox
	KindSquare
)

// Fixed dimensions of each kind.
const (
	CircleRadius = 50.0
	BoxWidth     = 100.0
	BoxHeight    = 50.0
	SquareSize   = 75.0
)

var kindNames = map[Kind]string{
	KindCircle: "CIRCLE",
	KindBox:    "BOX",
	KindSquare: "SQUARE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind accepts the wire names (case insensitive).
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindCircle, KindBox, KindSquare}
}

// Pen receives the silhouette of a shape centred on the origin.
type Pen interface {
	Circle(radius float64)
	Rect(width, height float64)
}

// Metrics are the cached geometric attributes of the current silhouette.
type Metrics struct {
	Area           float64
	Centroid       physics.Vec
	BoundingRadius float64
}

// Shape is the sealed shape variant.
type Shape interface {
	Kind() Kind
	// Def returns the undeformed collision geometry.
	Def() physics.ShapeDef
	// BaseVertices returns a fresh copy of the undeformed polygon, or nil for
	// shapes that are not vertex scaled.
	BaseVertices() []physics.Vec
	// Trace draws the nominal silhouette.
	Trace(p Pen)
	// Metrics derives area, centroid and bounding radius from the live
	// vertex buffer (ignored by shapes without vertices).
	Metrics(live []physics.Vec) Metrics

	sealed()
}

// For returns the shape of kind k with its fixed dimensions.
func For(k Kind) (Shape, error) {
	switch k {
	case KindCircle:
		return Circle{Radius: CircleRadius}, nil
	case KindBox:
		return Rect{kind: KindBox, Width: BoxWidth, Height: BoxHeight}, nil
	case KindSquare:
		return Rect{kind: KindSquare, Width: SquareSize, Height: SquareSize}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
}

// Circle is represented by its radius only; deformation scales it visually.
type Circle struct {
	Radius float64
}

func (Circle) Kind() Kind { return KindCircle }

func (c Circle) Def() physics.ShapeDef {
	return physics.ShapeDef{Type: physics.ShapeCircle, Radius: c.Radius}
}

func (Circle) BaseVertices() []physics.Vec { return nil }

func (c Circle) Trace(p Pen) { p.Circle(c.Radius) }

func (c Circle) Metrics([]physics.Vec) Metrics {
	return Metrics{
		Area:           cp.AreaForCircle(0, c.Radius),
		BoundingRadius: c.Radius,
	}
}

func (Circle) sealed() {}

// Rect backs both BOX and SQUARE.
type Rect struct {
	kind          Kind
	Width, Height float64
}

func (r Rect) Kind() Kind { return r.kind }

func (r Rect) Def() physics.ShapeDef {
	return physics.ShapeDef{Type: physics.ShapePolygon, Vertices: r.BaseVertices()}
}

// BaseVertices winds counter-clockwise starting at the top-left corner.
func (r Rect) BaseVertices() []physics.Vec {
	hw, hh := r.Width/2, r.Height/2
	return []physics.Vec{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
}

func (r Rect) Trace(p Pen) { p.Rect(r.Width, r.Height) }

func (r Rect) Metrics(live []physics.Vec) Metrics {
	if len(live) < 3 {
		live = r.BaseVertices()
	}
	verts := make([]cp.Vector, len(live))
	var radius float64
	for i, v := range live {
		verts[i] = cp.Vector{X: v.X, Y: v.Y}
		radius = max(radius, v.Len())
	}
	c := cp.CentroidForPoly(len(verts), verts)
	return Metrics{
		Area:           cp.AreaForPoly(len(verts), verts, 0),
		Centroid:       physics.Vec{X: c.X, Y: c.Y},
		BoundingRadius: radius,
	}
}

func (Rect) sealed() {}

// ScaleVertices writes factor*base[i] into dst (grown as needed) and returns
// it. base is never modified.
func ScaleVertices(dst, base []physics.Vec, factor float64) []physics.Vec {
	if cap(dst) < len(base) {
		dst = make([]physics.Vec, len(base))
	}
	dst = dst[:len(base)]
	for i, v := range base {
		dst[i] = v.Scale(factor)
	}
	return dst
}
