package component

// Motion mirrors the solver velocity of the last step.
type Motion struct {
	VX      float64
	VY      float64
	Angular float64
}

var MotionComponent = NewComponent[Motion]()
