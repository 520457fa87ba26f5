package physics

import "errors"

var (
	ErrUnknownBody  = errors.New("physics: unknown body")
	ErrUnknownShape = errors.New("physics: unknown shape")
	ErrInvalidShape = errors.New("physics: invalid shape definition")
	ErrNotPolygon   = errors.New("physics: shape is not a polygon")
)

// BodyID and ShapeID are opaque solver handles. Zero is never valid.
type (
	BodyID  uint64
	ShapeID uint64
)

// ShapeType selects the geometry carried by a ShapeDef.
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota + 1
	ShapePolygon
	ShapeSegment
)

// ShapeDef describes a collision shape in body-local coordinates.
type ShapeDef struct {
	Type       ShapeType
	Radius     float64 // circle radius, segment thickness
	Vertices   []Vec   // convex polygon, counter-clockwise
	A, B       Vec     // segment endpoints
	Filter     Filter
	Friction   float64
	Elasticity float64
}

// Validate reports malformed definitions.
func (d ShapeDef) Validate() error {
	switch d.Type {
	case ShapeCircle:
		if d.Radius <= 0 {
			return ErrInvalidShape
		}
	case ShapePolygon:
		if len(d.Vertices) < 3 {
			return ErrInvalidShape
		}
	case ShapeSegment:
		if d.A == d.B {
			return ErrInvalidShape
		}
	default:
		return ErrInvalidShape
	}
	return nil
}

// BodyState is the solver-owned motion state of a body.
type BodyState struct {
	Position Vec
	Angle    float64
	Velocity Vec
}

// Contact is one world-space contact point produced by the last step.
type Contact struct {
	A, B  BodyID
	Point Vec
}

// Solver is the rigid body collaborator. Implementations are driven from a
// single goroutine; none of the methods are safe for concurrent use.
type Solver interface {
	// StaticBody returns the immovable body that owns world geometry.
	StaticBody() BodyID
	CreateBody(mass float64, pos Vec, angle float64) BodyID
	// RemoveBody detaches every shape of the body, then the body itself.
	RemoveBody(id BodyID)
	HasBody(id BodyID) bool
	Body(id BodyID) (BodyState, bool)
	SetVelocity(id BodyID, v Vec)
	SetAngularVelocity(id BodyID, w float64)
	SetTransform(id BodyID, pos Vec, angle float64)

	AttachShape(body BodyID, def ShapeDef) (ShapeID, error)
	// ReplaceShape swaps old for a new shape on the same body as one
	// operation, so no query ever sees the body with zero or two shapes.
	ReplaceShape(old ShapeID, def ShapeDef) (ShapeID, error)
	DetachShape(id ShapeID)
	ShapeCount(body BodyID) int
	SetFilter(id ShapeID, f Filter)
	ShapeFilter(id ShapeID) (Filter, bool)
	// SetVertices overwrites the live vertex buffer of a polygon shape and
	// re-derives its cached mass data and bounds.
	SetVertices(id ShapeID, verts []Vec) error

	Step(dt float64)
	// Contacts lists the contact points generated by the most recent Step.
	Contacts() []Contact
}
