package component

// Selected marks the brush the local user is manipulating.
type Selected struct {
	Dragging       bool
	LastX, LastY   float64
	GrabDX, GrabDY float64
}

var SelectedComponent = NewComponent[Selected]()
