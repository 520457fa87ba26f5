package component

import "github.com/milk9111/brushtoy/physics"

// Plane is a static boundary segment attached to the solver's static body.
type Plane struct {
	Shape physics.ShapeID
	A, B  physics.Vec
}

var PlaneComponent = NewComponent[Plane]()
