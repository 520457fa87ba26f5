package component

import (
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/shape"
)

// Geometry tracks the collision shape currently attached to a brush body.
// Base is snapshotted when the shape is built and never written again; Live
// is always Factor*Base and is the only buffer pushed to the solver.
type Geometry struct {
	Shape   shape.Shape
	ShapeID physics.ShapeID
	Base    []physics.Vec
	Live    []physics.Vec
	Factor  float64
	Metrics shape.Metrics
}

var GeometryComponent = NewComponent[Geometry]()
