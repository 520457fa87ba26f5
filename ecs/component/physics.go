package component

import "github.com/milk9111/brushtoy/physics"

// PhysicsBody links an entity to its solver body. Position, angle and
// velocity live in the solver and are mirrored into Transform and Motion.
type PhysicsBody struct {
	Body physics.BodyID
	Mass float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
