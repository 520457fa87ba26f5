package component

import "github.com/milk9111/brushtoy/shape"

// Input stores the pointer and key state sampled for one tick.
type Input struct {
	CursorX, CursorY float64

	Press   bool // primary button went down this tick
	Held    bool
	Release bool

	Shape       shape.Kind // zero when no shape key was pressed
	CycleFill   bool
	CycleStroke bool
	FillImage   bool
	Delete      bool
	Export      bool
	ToggleDebug bool
}

var InputComponent = NewComponent[Input]()
