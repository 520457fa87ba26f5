package component

// ContactGrace holds a pending switch from the inert mask to the full mask.
// It is removed once applied; rebuilding the shape replaces it.
type ContactGrace struct {
	// ReadyAt is the simulated time in seconds at which the full mask applies.
	ReadyAt float64
}

var ContactGraceComponent = NewComponent[ContactGrace]()
